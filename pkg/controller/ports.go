package controller

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
)

// RenderPort consumes a read-only snapshot of the tree. It is called
// exactly once per commit cycle that reaches the Rendering state, after
// the mutation has completed. Implementations must not retain or mutate
// the snapshot's backing tree; they own no tree state.
type RenderPort interface {
	Render(snapshot []ordtree.NodeView, mode ordtree.Mode)
}

// FeedbackPort consumes the outcome of one commit cycle. It is called
// exactly once per cycle and must render exactly one message, taken from
// [engine.Outcome.Message].
type FeedbackPort interface {
	Feedback(outcome engine.Outcome, severity engine.Severity)
}

// CommitRecorder receives commit cycle telemetry.
// [observability.OpMetrics] satisfies it.
type CommitRecorder interface {
	RecordCommit(ctx context.Context, op, outcome string, duration time.Duration)
	RecordTreeSize(ctx context.Context, delta int64)
}

// NopRenderPort discards snapshots.
type NopRenderPort struct{}

// Render implements RenderPort.
func (NopRenderPort) Render([]ordtree.NodeView, ordtree.Mode) {}

// NopFeedbackPort discards feedback.
type NopFeedbackPort struct{}

// Feedback implements FeedbackPort.
func (NopFeedbackPort) Feedback(engine.Outcome, engine.Severity) {}
