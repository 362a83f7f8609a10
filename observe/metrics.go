package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts and times health evaluations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly and never block on ctx.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one evaluation of meta. A non-nil err or a DOWN
	// status also counts as a failure.
	RecordCheck(ctx context.Context, meta ComponentMeta, status string, duration time.Duration, err error)
}

type checkMetrics struct {
	total    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics registers the health.check.* instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*checkMetrics, error) {
	var (
		m   checkMetrics
		err error
	)
	if m.total, err = meter.Int64Counter("health.check.total",
		metric.WithDescription("Health check evaluations"),
		metric.WithUnit("{check}")); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("health.check.failures",
		metric.WithDescription("Health check evaluations that errored or reported DOWN"),
		metric.WithUnit("{check}")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("health.check.duration_ms",
		metric.WithDescription("Health check evaluation latency"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *checkMetrics) RecordCheck(ctx context.Context, meta ComponentMeta, status string, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes(attribute.String("health.status", status))...)
	m.total.Add(ctx, 1, opt)
	if err != nil || status == "DOWN" {
		m.failures.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration.Milliseconds()), opt)
}

type nopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordCheck(context.Context, ComponentMeta, string, time.Duration, error) {}
