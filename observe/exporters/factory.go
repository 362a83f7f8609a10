// Package exporters builds the OpenTelemetry exporters selectable by name
// in observe.Config.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrUnknownExporter is returned for an exporter name with no factory.
	ErrUnknownExporter = errors.New("unknown exporter")

	// ErrEndpointNotConfigured is returned when a network exporter has no
	// endpoint in its environment.
	ErrEndpointNotConfigured = errors.New("exporter endpoint not configured")
)

// Stdout is where the stdout exporters write. Tests may replace it.
var Stdout io.Writer = os.Stdout

// requireEnv returns the first non-empty variable among keys.
func requireEnv(keys ...string) (string, error) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set %v", ErrEndpointNotConfigured, keys)
}

type (
	spanFactory   func(ctx context.Context) (sdktrace.SpanExporter, error)
	readerFactory func(ctx context.Context) (sdkmetric.Reader, error)
)

var spanFactories = map[string]spanFactory{
	"stdout": func(context.Context) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(Stdout))
	},
	"otlp": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		if _, err := requireEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	},
	// Jaeger ingests OTLP natively.
	"jaeger": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		endpoint, err := requireEnv("OTEL_EXPORTER_JAEGER_ENDPOINT")
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
	},
	"none": discardSpans,
	"":     discardSpans,
}

func discardSpans(context.Context) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
}

// NewTracingExporter returns the span exporter called name: stdout, otlp,
// jaeger or none.
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	factory, ok := spanFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
	return factory(ctx)
}

var readerFactories = map[string]readerFactory{
	"stdout": func(context.Context) (sdkmetric.Reader, error) {
		return periodic(stdoutmetric.New(stdoutmetric.WithWriter(Stdout)))
	},
	"otlp": func(ctx context.Context) (sdkmetric.Reader, error) {
		if _, err := requireEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		return periodic(otlpmetricgrpc.New(ctx))
	},
	// The Prometheus exporter is a pull reader served from the default
	// registry.
	"prometheus": func(context.Context) (sdkmetric.Reader, error) {
		return prometheus.New()
	},
	"none": discardMetrics,
	"":     discardMetrics,
}

func discardMetrics(context.Context) (sdkmetric.Reader, error) {
	return periodic(stdoutmetric.New(stdoutmetric.WithWriter(io.Discard)))
}

func periodic(exp sdkmetric.Exporter, err error) (sdkmetric.Reader, error) {
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

// NewMetricsReader returns the metrics reader called name: stdout, otlp,
// prometheus or none.
func NewMetricsReader(ctx context.Context, name string) (sdkmetric.Reader, error) {
	factory, ok := readerFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
	return factory(ctx)
}
