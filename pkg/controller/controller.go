// Package controller sequences one interaction session as an explicit
// finite-state machine: raw input is validated, applied to the tree,
// the result rendered, feedback shown, and the input cleared, all as
// discrete observable states. The controller owns no tree state; it
// holds only the current state tag, the raw text buffer, and the one
// live outcome of the commit in flight.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/validate"
)

// Event errors.
var (
	// ErrBusy is returned for a commit or input event that arrives
	// while a previous commit is still being processed. Commits are
	// rejected, never interleaved or queued.
	ErrBusy = errors.New("controller busy: commit in flight")
)

// Controller drives one session's interaction state machine. It is
// single-threaded by contract: one event is processed to completion
// before the next is accepted.
type Controller struct {
	engine   *engine.Engine
	policy   validate.Policy
	render   RenderPort
	feedback FeedbackPort
	logger   *slog.Logger
	recorder CommitRecorder
	observer func(State)

	state   State
	raw     string
	outcome *engine.Outcome
	busy    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers a callback invoked on every state transition,
// after the new state is set. Used by tests and diagnostics.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithRecorder attaches commit telemetry.
func WithRecorder(rec CommitRecorder) Option {
	return func(c *Controller) { c.recorder = rec }
}

// New creates a controller in StateIdle. Nil ports are replaced with
// no-op implementations; a nil logger discards records.
func New(eng *engine.Engine, policy validate.Policy, render RenderPort, feedback FeedbackPort,
	logger *slog.Logger, opts ...Option) *Controller {
	if render == nil {
		render = NopRenderPort{}
	}

	if feedback == nil {
		feedback = NopFeedbackPort{}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctrl := &Controller{
		engine:   eng,
		policy:   policy,
		render:   render,
		feedback: feedback,
		logger:   logger,
		state:    StateIdle,
	}

	for _, opt := range opts {
		opt(ctrl)
	}

	return ctrl
}

// State returns the current state tag.
func (c *Controller) State() State {
	return c.state
}

// Raw returns the current raw text buffer.
func (c *Controller) Raw() string {
	return c.raw
}

func (c *Controller) transition(to State) {
	c.state = to

	if c.observer != nil {
		c.observer(to)
	}
}

// Focus moves an idle controller into Editing. Focusing while already
// editing is a no-op; focusing mid-commit returns ErrBusy.
func (c *Controller) Focus() error {
	switch c.state {
	case StateIdle:
		c.transition(StateEditing)

		return nil
	case StateEditing:
		return nil
	default:
		return ErrBusy
	}
}

// SetText stores the raw text. Valid while editing, or after an error
// cycle when the user edits the rejected input in place.
func (c *Controller) SetText(raw string) error {
	switch c.state {
	case StateEditing, StateErrorFeedback:
		c.raw = raw

		return nil
	case StateIdle:
		// Typing implies focus.
		c.transition(StateEditing)
		c.raw = raw

		return nil
	default:
		return ErrBusy
	}
}

// Blur leaves Editing without committing. The raw text is retained for
// the next commit.
func (c *Controller) Blur() error {
	if c.state != StateEditing {
		return ErrBusy
	}

	c.transition(StateIdle)

	return nil
}

// CommitText stores raw text and commits it in one event, the way a
// scripted input source drives the controller.
func (c *Controller) CommitText(ctx context.Context, op engine.Op, raw string) (engine.Outcome, error) {
	if !c.acceptingCommit() {
		return engine.Outcome{}, ErrBusy
	}

	c.raw = raw

	return c.Commit(ctx, op)
}

// Commit runs one full cycle for the stored raw text:
// Validating -> (ErrorFeedback | Mutating -> Rendering -> feedback ->
// Clearing -> Idle). The returned outcome is the same one delivered to
// the feedback port. Commits are accepted from Idle, Editing, and
// ErrorFeedback; anything else returns ErrBusy.
func (c *Controller) Commit(ctx context.Context, op engine.Op) (engine.Outcome, error) {
	if !c.acceptingCommit() {
		return engine.Outcome{}, ErrBusy
	}

	c.busy = true
	defer func() { c.busy = false }()

	started := time.Now()

	c.transition(StateValidating)

	value, err := c.validateInput(op)
	if err != nil {
		outcome := engine.Outcome{Kind: engine.OutcomeValidationError, Reason: err}
		c.outcome = &outcome

		c.logger.DebugContext(ctx, "validation rejected input",
			slog.String("op", op.String()), slog.String("reason", err.Error()))

		c.transition(StateErrorFeedback)
		c.deliverFeedback()
		c.record(ctx, op, outcome, started)

		// Raw text is retained; the next commit re-enters Validating.
		return outcome, nil
	}

	c.transition(StateMutating)

	sizeBefore := c.engine.Tree().Len()
	outcome := c.engine.Apply(op, value)
	c.outcome = &outcome

	c.transition(StateRendering)
	c.render.Render(c.engine.Tree().Snapshot(), c.engine.Tree().Mode())

	if outcome.Severity() == engine.SeverityOk {
		c.transition(StateSuccessFeedback)
		c.deliverFeedback()
		c.transition(StateClearing)
		c.raw = ""
		c.transition(StateIdle)
	} else {
		// Warning-class outcome: input is kept for correction.
		c.transition(StateErrorFeedback)
		c.deliverFeedback()
	}

	c.logger.InfoContext(ctx, "commit complete",
		slog.String("op", op.String()),
		slog.String("outcome", outcome.Kind.String()),
		slog.Int("tree_size", c.engine.Tree().Len()))

	c.record(ctx, op, outcome, started)

	if c.recorder != nil {
		c.recorder.RecordTreeSize(ctx, int64(c.engine.Tree().Len()-sizeBefore))
	}

	return outcome, nil
}

// validateInput runs the validator. Clear commits carry no value and
// skip parsing entirely.
func (c *Controller) validateInput(op engine.Op) (int64, error) {
	if op == engine.OpClear {
		return 0, nil
	}

	return validate.Parse(c.raw, c.policy)
}

func (c *Controller) record(ctx context.Context, op engine.Op, outcome engine.Outcome, started time.Time) {
	if c.recorder != nil {
		c.recorder.RecordCommit(ctx, op.String(), outcome.Kind.String(), time.Since(started))
	}
}

func (c *Controller) acceptingCommit() bool {
	if c.busy {
		return false
	}

	switch c.state {
	case StateIdle, StateEditing, StateErrorFeedback:
		return true
	default:
		return false
	}
}

// deliverFeedback hands the live outcome to the feedback port exactly
// once and consumes it.
func (c *Controller) deliverFeedback() {
	doAssertLive(c.outcome != nil)

	outcome := *c.outcome
	c.outcome = nil
	c.feedback.Feedback(outcome, outcome.Severity())
}

func doAssertLive(condition bool) {
	if !condition {
		panic("controller: no live outcome to deliver")
	}
}
