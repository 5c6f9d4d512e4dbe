package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records canvas workflow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPhase records one preparation phase (validate, compile,
	// execute) with its duration and error status.
	RecordPhase(ctx context.Context, phase string, duration time.Duration, err error)

	// RecordExecution records a completed execution run.
	RecordExecution(ctx context.Context, success bool, duration time.Duration)

	// RecordPrunedEdges records dangling edges removed by the sanitizer.
	RecordPrunedEdges(ctx context.Context, removed int)

	// RecordUpload records a file upload, noting dedup short-circuits.
	RecordUpload(ctx context.Context, sizeBytes int64, deduplicated bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	phaseRuns    metric.Int64Counter
	phaseLatency metric.Float64Histogram
	phaseErrors  metric.Int64Counter
	executions   metric.Int64Counter
	execLatency  metric.Float64Histogram
	prunedEdges  metric.Int64Counter
	uploadSize   metric.Int64Histogram
	uploadDedups metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowcanvas")

	phaseRuns, err := meter.Int64Counter("flowcanvas.prepare.phases",
		metric.WithDescription("Number of preparation phase runs"),
	)
	if err != nil {
		return nil, err
	}

	phaseLatency, err := meter.Float64Histogram("flowcanvas.prepare.phase_latency_ms",
		metric.WithDescription("Preparation phase latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	phaseErrors, err := meter.Int64Counter("flowcanvas.prepare.phase_errors",
		metric.WithDescription("Number of preparation phase errors"),
	)
	if err != nil {
		return nil, err
	}

	executions, err := meter.Int64Counter("flowcanvas.execution.runs",
		metric.WithDescription("Number of workflow execution runs"),
	)
	if err != nil {
		return nil, err
	}

	execLatency, err := meter.Float64Histogram("flowcanvas.execution.latency_ms",
		metric.WithDescription("Workflow execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	prunedEdges, err := meter.Int64Counter("flowcanvas.sanitize.pruned_edges",
		metric.WithDescription("Number of dangling edges removed by the sanitizer"),
	)
	if err != nil {
		return nil, err
	}

	uploadSize, err := meter.Int64Histogram("flowcanvas.files.upload_size_bytes",
		metric.WithDescription("Uploaded file size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	uploadDedups, err := meter.Int64Counter("flowcanvas.files.upload_dedups",
		metric.WithDescription("Number of uploads short-circuited by content-hash dedup"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		phaseRuns:    phaseRuns,
		phaseLatency: phaseLatency,
		phaseErrors:  phaseErrors,
		executions:   executions,
		execLatency:  execLatency,
		prunedEdges:  prunedEdges,
		uploadSize:   uploadSize,
		uploadDedups: uploadDedups,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPhase records one preparation phase.
func (m *otelMetrics) RecordPhase(ctx context.Context, phase string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("phase", phase),
	}

	m.phaseRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.phaseLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.phaseErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordExecution records a completed execution run.
func (m *otelMetrics) RecordExecution(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.executions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.execLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordPrunedEdges records sanitizer removals.
func (m *otelMetrics) RecordPrunedEdges(ctx context.Context, removed int) {
	if removed <= 0 {
		return
	}
	m.prunedEdges.Add(ctx, int64(removed))
}

// RecordUpload records a file upload.
func (m *otelMetrics) RecordUpload(ctx context.Context, sizeBytes int64, deduplicated bool) {
	m.uploadSize.Record(ctx, sizeBytes)
	if deduplicated {
		m.uploadDedups.Add(ctx, 1)
	}
}
