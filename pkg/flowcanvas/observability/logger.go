// Package observability provides structured logging, metrics, and tracing
// helpers for the canvas workflow core.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogPrepareStart logs the start of an execution preparation attempt.
func LogPrepareStart(logger *slog.Logger, attemptID string, nodeCount, edgeCount int) {
	if logger == nil {
		return
	}
	logger.Info("preparation starting",
		slog.String("attempt_id", attemptID),
		slog.Int("node_count", nodeCount),
		slog.Int("edge_count", edgeCount),
	)
}

// LogValidationFailed logs a user-fixable validation failure.
func LogValidationFailed(logger *slog.Logger, attemptID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("validation failed",
		slog.String("attempt_id", attemptID),
		slog.String("error", err.Error()),
	)
}

// LogEdgesPruned logs dangling edges removed by the sanitizer.
// Integrity healing is informational, never an error.
func LogEdgesPruned(logger *slog.Logger, attemptID string, removed int) {
	if logger == nil || removed == 0 {
		return
	}
	logger.Info("dangling edges pruned",
		slog.String("attempt_id", attemptID),
		slog.Int("removed", removed),
	)
}

// LogCompileDiagnostics logs the remote compiler's findings.
func LogCompileDiagnostics(logger *slog.Logger, attemptID string, errors, warnings int) {
	if logger == nil {
		return
	}
	logger.Info("compile diagnostics",
		slog.String("attempt_id", attemptID),
		slog.Int("errors", errors),
		slog.Int("warnings", warnings),
	)
}

// LogExecuteComplete logs a finished execution run.
func LogExecuteComplete(logger *slog.Logger, attemptID string, success bool, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("execution completed",
		slog.String("attempt_id", attemptID),
		slog.Bool("success", success),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogExecuteError logs an execution failure.
func LogExecuteError(logger *slog.Logger, attemptID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("execution failed",
		slog.String("attempt_id", attemptID),
		slog.String("error", err.Error()),
	)
}

// LogExecuteCancelled logs a user-initiated cancellation. Not an error.
func LogExecuteCancelled(logger *slog.Logger, attemptID string) {
	if logger == nil {
		return
	}
	logger.Info("execution cancelled",
		slog.String("attempt_id", attemptID),
	)
}

// LogPersistenceWarning logs a non-fatal persistence warning attached to an
// otherwise finished run. Surfaced separately from success and error.
func LogPersistenceWarning(logger *slog.Logger, attemptID, warning string) {
	if logger == nil || warning == "" {
		return
	}
	logger.Warn("execution result not durably recorded",
		slog.String("attempt_id", attemptID),
		slog.String("warning", warning),
	)
}

// LogUploadComplete logs a finished file upload.
func LogUploadComplete(logger *slog.Logger, name, fileID string, sizeBytes int, deduplicated bool) {
	if logger == nil {
		return
	}
	logger.Debug("file upload completed",
		slog.String("name", name),
		slog.String("file_id", fileID),
		slog.Int("size_bytes", sizeBytes),
		slog.Bool("deduplicated", deduplicated),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
