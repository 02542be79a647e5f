// Package commands implements CLI command handlers for arbor.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sumatoshi-tech/arbor/pkg/config"
	"github.com/Sumatoshi-tech/arbor/pkg/controller"
	"github.com/Sumatoshi-tech/arbor/pkg/observability"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
	"github.com/Sumatoshi-tech/arbor/pkg/validate"
	"github.com/Sumatoshi-tech/arbor/pkg/version"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// Runtime bundles the configured dependencies shared by all commands:
// loaded config, structured logger, telemetry providers and the
// optional Prometheus metrics server.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Recorder  controller.CommitRecorder
	providers observability.Providers
	metrics   *http.Server
}

// NewRuntime loads configuration from configPath (or the default search
// paths when empty) and initializes observability.
func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	providers, err := observability.Init(observability.Config{
		ServiceName:    "arbor",
		ServiceVersion: version.Version,
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
		LogLevel:       cfg.Logging.SlogLevel(),
		LogJSON:        cfg.Logging.Format == config.LogFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt := &Runtime{
		Config:    cfg,
		Logger:    providers.Logger,
		providers: providers,
	}

	err = rt.startMetrics(cfg.Telemetry.MetricsAddr)
	if err != nil {
		shutdownErr := providers.Shutdown(ctx)

		return nil, errors.Join(err, shutdownErr)
	}

	return rt, nil
}

// startMetrics exposes /metrics on addr and routes commit metrics
// through the Prometheus meter. When addr is empty the OTLP (or noop)
// meter from Init is used instead.
func (rt *Runtime) startMetrics(addr string) error {
	if addr == "" {
		recorder, err := observability.NewOpMetrics(rt.providers.Meter)
		if err != nil {
			return fmt.Errorf("create op metrics: %w", err)
		}

		rt.Recorder = recorder

		return nil
	}

	handler, meter, err := observability.PrometheusHandler()
	if err != nil {
		return fmt.Errorf("prometheus handler: %w", err)
	}

	recorder, err := observability.NewOpMetrics(meter)
	if err != nil {
		return fmt.Errorf("create op metrics: %w", err)
	}

	rt.Recorder = recorder

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	rt.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := rt.metrics.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			rt.Logger.Error("metrics server failed", "addr", addr, "error", serveErr)
		}
	}()

	rt.Logger.Info("metrics server listening", "addr", addr)

	return nil
}

// SessionOptions materializes the session defaults from config with
// the given presentation ports attached.
func (rt *Runtime) SessionOptions(render controller.RenderPort, feedback controller.FeedbackPort) (session.Options, error) {
	mode, err := ordtree.ParseMode(rt.Config.Session.Mode)
	if err != nil {
		return session.Options{}, err
	}

	polarity, err := ordtree.ParsePolarity(rt.Config.Session.Polarity)
	if err != nil {
		return session.Options{}, err
	}

	policy, err := validate.ParsePolicy(rt.Config.Session.ParsePolicy)
	if err != nil {
		return session.Options{}, err
	}

	return session.Options{
		Mode:                 mode,
		Polarity:             polarity,
		Policy:               policy,
		VerifyInvariants:     rt.Config.Session.VerifyInvariants,
		MaxNodes:             rt.Config.Session.MaxNodes,
		HibernationThreshold: rt.Config.Session.HibernationThreshold,
		Render:               render,
		Feedback:             feedback,
		Recorder:             rt.Recorder,
		Logger:               rt.Logger,
	}, nil
}

// Close flushes telemetry and stops the metrics server.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error

	if rt.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
		defer cancel()

		err := rt.metrics.Shutdown(shutdownCtx)
		if err != nil {
			errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
		}
	}

	err := rt.providers.Shutdown(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
	}

	return errors.Join(errs...)
}
