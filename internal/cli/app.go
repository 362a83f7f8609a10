package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// app is a configured health endpoint and the telemetry behind it.
type app struct {
	cfg      *config.Config
	obs      observe.Observer
	endpoint *health.Endpoint
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, err
	}

	a, err := assemble(cfg, obs)
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}
	return a, nil
}

func assemble(cfg *config.Config, obs observe.Observer) (*app, error) {
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	reg, err := cfg.NewRegistry(mw)
	if err != nil {
		return nil, err
	}
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	endpoint, err := cfg.NewEndpoint(reg, health.WithLogger(obs.Logger()), health.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, obs: obs, endpoint: endpoint}, nil
}

// handler serves the health endpoints, plus /metrics when metrics are
// exported to Prometheus.
func (a *app) handler() (http.Handler, error) {
	opts, err := a.cfg.HandlerOptions()
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	health.RegisterHandlers(mux, a.endpoint, opts...)
	if m := a.cfg.Observe.Metrics; m.Enabled && m.Exporter == "prometheus" {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux, nil
}

func (a *app) close(ctx context.Context) error {
	return a.obs.Shutdown(ctx)
}
