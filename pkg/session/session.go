// Package session ties one ordered tree, one operation engine, and one
// interaction controller into an isolated unit. Sessions never share
// mutable state; a Manager holds independent sessions by name.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Sumatoshi-tech/arbor/pkg/controller"
	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/validate"
)

// Session errors.
var (
	// ErrSessionFull is returned for an insert commit that would
	// exceed the configured node cap.
	ErrSessionFull = errors.New("session node limit reached")
)

// Options configures one session.
type Options struct {
	Mode     ordtree.Mode
	Polarity ordtree.Polarity
	Policy   validate.Policy

	// VerifyInvariants enables the post-operation invariant walk.
	VerifyInvariants bool

	// MaxNodes caps live nodes; zero means unlimited.
	MaxNodes int

	// HibernationThreshold is handed to the arena allocator.
	HibernationThreshold int

	Render   controller.RenderPort
	Feedback controller.FeedbackPort
	Recorder controller.CommitRecorder
	Logger   *slog.Logger
}

// Session owns one tree and the machinery that drives it. A session is
// single-threaded: one commit is processed to completion before the
// next is accepted.
type Session struct {
	name      string
	maxNodes  int
	policy    validate.Policy
	allocator *ordtree.Allocator
	tree      *ordtree.Tree
	engine    *engine.Engine
	ctrl      *controller.Controller
	logger    *slog.Logger
}

// New creates an empty session.
func New(name string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger = logger.With(slog.String("session", name))

	allocator := ordtree.NewAllocator()
	allocator.HibernationThreshold = opts.HibernationThreshold

	tree := ordtree.New(allocator, opts.Mode, opts.Polarity)
	eng := engine.New(tree, opts.VerifyInvariants)

	ctrlOpts := []controller.Option{}
	if opts.Recorder != nil {
		ctrlOpts = append(ctrlOpts, controller.WithRecorder(opts.Recorder))
	}

	ctrl := controller.New(eng, opts.Policy, opts.Render, opts.Feedback, logger, ctrlOpts...)

	return &Session{
		name:      name,
		maxNodes:  opts.MaxNodes,
		policy:    opts.Policy,
		allocator: allocator,
		tree:      tree,
		engine:    eng,
		ctrl:      ctrl,
		logger:    logger,
	}
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// Tree returns the session's tree.
func (s *Session) Tree() *ordtree.Tree {
	return s.tree
}

// Controller returns the session's interaction controller.
func (s *Session) Controller() *controller.Controller {
	return s.ctrl
}

// Commit wakes a hibernated session if needed and runs one full commit
// cycle for the raw input.
func (s *Session) Commit(ctx context.Context, op engine.Op, raw string) (engine.Outcome, error) {
	s.wake(ctx)

	if op == engine.OpInsert && s.maxNodes > 0 && s.tree.Len() >= s.maxNodes {
		// The cap only blocks input that would actually insert a node;
		// invalid text still takes the validation feedback path.
		if _, parseErr := validate.Parse(raw, s.policy); parseErr == nil {
			return engine.Outcome{}, ErrSessionFull
		}
	}

	return s.ctrl.CommitText(ctx, op, raw)
}

// Wake boots a hibernated arena so the tree can be read directly. A
// live session is untouched.
func (s *Session) Wake() {
	s.wake(context.Background())
}

func (s *Session) wake(ctx context.Context) {
	if !s.allocator.Hibernated() {
		return
	}

	s.allocator.Boot()
	s.logger.DebugContext(ctx, "session woke from hibernation")
}

// Hibernate compresses the session's arena. Only an idle session can
// hibernate; a session mid-cycle or holding edited input keeps its
// memory. Returns true if the session is hibernated afterwards.
func (s *Session) Hibernate() bool {
	if s.ctrl.State() != controller.StateIdle {
		return false
	}

	if s.allocator.Hibernated() {
		return true
	}

	s.allocator.Hibernate()

	return s.allocator.Hibernated()
}

// Hibernated reports whether the session's arena is compressed.
func (s *Session) Hibernated() bool {
	return s.allocator.Hibernated()
}
