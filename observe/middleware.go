package observe

import (
	"context"
	"time"
)

// ExecuteFunc evaluates one component and reports its status name.
type ExecuteFunc func(ctx context.Context, meta ComponentMeta) (string, error)

// Middleware wraps health evaluations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a concurrency-safe ExecuteFunc when fn is.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil arguments are replaced by no-op
// implementations.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps fn with a span, metric records and one log line per call.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta ComponentMeta) (string, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		status, err := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, status, err)
		m.metrics.RecordCheck(ctx, meta, status, duration, err)

		logger := m.logger.WithComponent(meta)
		log, msg := logger.Debug, "health check completed"
		fields := []Field{
			{Key: "status", Value: status},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			log, msg = logger.Error, "health check failed"
			fields = append(fields, Field{Key: "error", Value: err.Error()})
		} else if status == "DOWN" {
			log, msg = logger.Warn, "health check reported down"
		}
		log(ctx, msg, fields...)

		return status, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
