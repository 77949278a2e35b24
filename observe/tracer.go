package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps OpenTelemetry tracing with probe-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndProbe must be best-effort and must not panic.
type Tracer interface {
	// StartProbe starts a span for one dependency check.
	StartProbe(ctx context.Context, dependency string) (context.Context, trace.Span)

	// EndProbe ends the span, recording any error.
	EndProbe(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartProbe starts a span named probe.check.<dependency>.
func (t *tracerImpl) StartProbe(ctx context.Context, dependency string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "probe.check."+dependency,
		trace.WithAttributes(
			attribute.String("dependency.name", dependency),
			attribute.Bool("probe.error", false), // Updated in EndProbe if error
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndProbe ends the span and records the error status if present.
func (t *tracerImpl) EndProbe(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("probe.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartProbe(ctx context.Context, dependency string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, "probe.check."+dependency)
}

func (t *noopTracer) EndProbe(span trace.Span, err error) {
	span.End()
}
