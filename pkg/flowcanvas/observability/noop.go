package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordPhase does nothing.
func (NoopMetrics) RecordPhase(_ context.Context, _ string, _ time.Duration, _ error) {}

// RecordExecution does nothing.
func (NoopMetrics) RecordExecution(_ context.Context, _ bool, _ time.Duration) {}

// RecordPrunedEdges does nothing.
func (NoopMetrics) RecordPrunedEdges(_ context.Context, _ int) {}

// RecordUpload does nothing.
func (NoopMetrics) RecordUpload(_ context.Context, _ int64, _ bool) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartAttemptSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartAttemptSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartPhaseSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartPhaseSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
