package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer opens one span per health evaluation.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts an internal span named meta.SpanName().
	StartSpan(ctx context.Context, meta ComponentMeta) (context.Context, trace.Span)

	// EndSpan stamps the evaluated status on span and ends it. An error,
	// or a DOWN status, marks the span as failed.
	EndSpan(span trace.Span, status string, err error)
}

type spanTracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer that starts spans on t.
func NewTracer(t trace.Tracer) Tracer {
	return &spanTracer{tracer: t}
}

func (t *spanTracer) StartSpan(ctx context.Context, meta ComponentMeta) (context.Context, trace.Span) {
	attrs := meta.attributes()
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("health.tags", meta.Tags))
	}
	return t.tracer.Start(ctx, meta.SpanName(), trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
}

func (t *spanTracer) EndSpan(span trace.Span, status string, err error) {
	defer span.End()
	span.SetAttributes(attribute.String("health.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if status == "DOWN" {
		span.SetStatus(codes.Error, "component is down")
		return
	}
	span.SetStatus(codes.Ok, "")
}

// NopTracer returns a Tracer whose spans are never recorded.
func NopTracer() Tracer {
	return &spanTracer{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
