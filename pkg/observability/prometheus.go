package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusHandler creates a Prometheus metrics exporter backed by an
// OTel MeterProvider. It returns the [http.Handler] serving the /metrics
// scrape endpoint and the meter instruments should be created from.
// Each call creates an independent Prometheus registry to avoid
// collector conflicts when called multiple times.
func PrometheusHandler() (http.Handler, metric.Meter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), provider.Meter(meterName), nil
}
