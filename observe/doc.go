// Package observe provides telemetry for health evaluations.
//
// It covers structured logging, OpenTelemetry metrics and tracing, and a
// Middleware that wraps a single evaluation with all three. The package has
// no knowledge of health types; callers describe what they evaluate with a
// ComponentMeta and report the resulting status by name.
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "checkout",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	mw, err := observe.MiddlewareFromObserver(obs)
package observe
