// Package observability provides production-grade observability features
// for the chat workflow engine: structured logging, metrics, and
// distributed tracing.
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

// EnrichLogger adds engine context to a logger.
// Returns a new logger with thread_id, turn_id, and node fields.
func EnrichLogger(logger *slog.Logger, threadID, turnID, node string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("thread_id", threadID),
		slog.String("turn_id", turnID),
		slog.String("node", node),
	)
}

// LogTurnStart logs the start of a conversation turn.
func LogTurnStart(logger *slog.Logger, turnID, threadID string) {
	if logger == nil {
		return
	}
	logger.Info("turn starting",
		slog.String("turn_id", turnID),
		slog.String("thread_id", threadID),
	)
}

// LogTurnComplete logs successful turn completion.
func LogTurnComplete(logger *slog.Logger, turnID string, durationMs float64, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("turn completed",
		slog.String("turn_id", turnID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_executed", nodeCount),
	)
}

// LogTurnError logs turn failure.
func LogTurnError(logger *slog.Logger, turnID string, err error, durationMs float64, lastNode string) {
	if logger == nil {
		return
	}
	logger.Error("turn failed",
		slog.String("turn_id", turnID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_node", lastNode),
	)
}

// LogSuspend logs a turn pausing on a pending interrupt.
func LogSuspend(logger *slog.Logger, turnID, node, interruptID string) {
	if logger == nil {
		return
	}
	logger.Info("turn suspended awaiting human input",
		slog.String("turn_id", turnID),
		slog.String("node", node),
		slog.String("interrupt_id", interruptID),
	)
}

// LogResume logs a suspended thread resuming.
func LogResume(logger *slog.Logger, threadID, interruptID string) {
	if logger == nil {
		return
	}
	logger.Info("thread resuming",
		slog.String("thread_id", threadID),
		slog.String("interrupt_id", interruptID),
	)
}

// LogNodeStart logs node execution start.
func LogNodeStart(logger *slog.Logger, node string) {
	if logger == nil {
		return
	}
	logger.Debug("node starting",
		slog.String("node", node),
	)
}

// LogNodeComplete logs successful node completion.
func LogNodeComplete(logger *slog.Logger, node string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed",
		slog.String("node", node),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeError logs node execution failure.
func LogNodeError(logger *slog.Logger, node string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed",
		slog.String("node", node),
		slog.String("error", err.Error()),
	)
}

// LogToolCall logs a tool invocation result.
func LogToolCall(logger *slog.Logger, tool, callID string, duration time.Duration, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("tool call failed",
			slog.String("tool", tool),
			slog.String("call_id", callID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("tool call completed",
		slog.String("tool", tool),
		slog.String("call_id", callID),
		slog.Duration("duration", duration),
	)
}

// LogCheckpoint logs a successful checkpoint write.
func LogCheckpoint(logger *slog.Logger, threadID string, revision, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("thread_id", threadID),
		slog.Int("revision", revision),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs a failed checkpoint operation.
func LogCheckpointError(logger *slog.Logger, threadID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("checkpoint operation failed",
		slog.String("thread_id", threadID),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
