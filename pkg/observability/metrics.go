package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal     = "arbor.commits.total"
	metricCommitDuration   = "arbor.commit.duration.seconds"
	metricValidationErrors = "arbor.validation.errors.total"
	metricTreeNodes        = "arbor.tree.nodes"

	attrOp      = "op"
	attrOutcome = "outcome"

	outcomeValidationError = "validation_error"
)

// durationBucketBoundaries covers 10us to 1s; commit cycles are
// in-memory and synchronous.
var durationBucketBoundaries = []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// OpMetrics holds the OTel instruments for commit cycle telemetry.
type OpMetrics struct {
	commitsTotal     metric.Int64Counter
	commitDuration   metric.Float64Histogram
	validationErrors metric.Int64Counter
	treeNodes        metric.Int64UpDownCounter
}

// NewOpMetrics creates commit metric instruments from the given meter.
func NewOpMetrics(mt metric.Meter) (*OpMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Total number of committed operations"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricCommitDuration,
		metric.WithDescription("Commit cycle duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitDuration, err)
	}

	validation, err := mt.Int64Counter(metricValidationErrors,
		metric.WithDescription("Total number of rejected inputs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricValidationErrors, err)
	}

	nodes, err := mt.Int64UpDownCounter(metricTreeNodes,
		metric.WithDescription("Number of live tree nodes"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTreeNodes, err)
	}

	return &OpMetrics{
		commitsTotal:     commits,
		commitDuration:   duration,
		validationErrors: validation,
		treeNodes:        nodes,
	}, nil
}

// RecordCommit records one completed commit cycle with its operation,
// outcome kind, and duration.
func (om *OpMetrics) RecordCommit(ctx context.Context, op, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrOutcome, outcome),
	)

	om.commitsTotal.Add(ctx, 1, attrs)
	om.commitDuration.Record(ctx, duration.Seconds(), attrs)

	if outcome == outcomeValidationError {
		om.validationErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// RecordTreeSize adjusts the live node gauge by delta.
func (om *OpMetrics) RecordTreeSize(ctx context.Context, delta int64) {
	if delta != 0 {
		om.treeNodes.Add(ctx, delta)
	}
}
