package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the flowcanvas tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("flowcanvas")

// SpanManager handles trace span lifecycle around preparation phases.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartAttemptSpan starts a span for an entire preparation attempt.
	StartAttemptSpan(ctx context.Context, attemptID string) (context.Context, trace.Span)

	// StartPhaseSpan starts a span for one phase (validate, compile,
	// execute) as a child of the attempt span.
	StartPhaseSpan(ctx context.Context, phase string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartAttemptSpan starts a span for a preparation attempt.
func (m *otelSpanManager) StartAttemptSpan(ctx context.Context, attemptID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowcanvas.prepare",
		trace.WithAttributes(
			attribute.String("attempt.id", attemptID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartPhaseSpan starts a span for one preparation phase.
func (m *otelSpanManager) StartPhaseSpan(ctx context.Context, phase string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowcanvas.prepare."+phase,
		trace.WithAttributes(
			attribute.String("phase", phase),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
