package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/arbor/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.OpMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	om, err := observability.NewOpMetrics(meter)
	require.NoError(t, err)

	return om, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestOpMetrics_RecordCommit(t *testing.T) {
	t.Parallel()

	om, reader := setupTestMeter(t)
	ctx := context.Background()

	om.RecordCommit(ctx, "insert", "inserted", time.Millisecond*5)

	rm := collectMetrics(t, reader)

	commits := findMetric(rm, "arbor.commits.total")
	require.NotNil(t, commits, "arbor.commits.total metric not found")

	duration := findMetric(rm, "arbor.commit.duration.seconds")
	require.NotNil(t, duration, "arbor.commit.duration.seconds metric not found")
}

func TestOpMetrics_RecordValidationError(t *testing.T) {
	t.Parallel()

	om, reader := setupTestMeter(t)
	ctx := context.Background()

	om.RecordCommit(ctx, "insert", "validation_error", time.Millisecond)

	rm := collectMetrics(t, reader)

	validationErrors := findMetric(rm, "arbor.validation.errors.total")
	require.NotNil(t, validationErrors, "arbor.validation.errors.total metric not found")
}

func TestOpMetrics_RecordTreeSize(t *testing.T) {
	t.Parallel()

	om, reader := setupTestMeter(t)
	ctx := context.Background()

	om.RecordTreeSize(ctx, 3)
	om.RecordTreeSize(ctx, -1)

	rm := collectMetrics(t, reader)

	nodes := findMetric(rm, "arbor.tree.nodes")
	require.NotNil(t, nodes, "arbor.tree.nodes metric not found")

	sum, ok := nodes.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestPrometheusHandler(t *testing.T) {
	t.Parallel()

	handler, meter, err := observability.PrometheusHandler()
	require.NoError(t, err)
	assert.NotNil(t, handler)
	assert.NotNil(t, meter)
}
