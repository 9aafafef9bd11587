// Package observability provides logging, metrics and tracing for event
// dispatch.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import "log/slog"

// LogListenerAttached logs a listener registration.
func LogListenerAttached(logger *slog.Logger, event, listenerID, priority string) {
	if logger == nil {
		return
	}
	logger.Debug("listener attached",
		slog.String("event", event),
		slog.String("listener_id", listenerID),
		slog.String("priority", priority),
	)
}

// LogListenerDetached logs a listener removal.
func LogListenerDetached(logger *slog.Logger, event, listenerID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener detached",
		slog.String("event", event),
		slog.String("listener_id", listenerID),
	)
}

// LogRaise logs a completed raise.
func LogRaise(logger *slog.Logger, event string, invoked int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event raised",
		slog.String("event", event),
		slog.Int("listeners_invoked", invoked),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRaiseError logs a raise aborted by a listener failure.
func LogRaiseError(logger *slog.Logger, event string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("event raise failed",
		slog.String("event", event),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogBusReset logs a full bus clear.
func LogBusReset(logger *slog.Logger, keys int) {
	if logger == nil {
		return
	}
	logger.Info("event bus reset",
		slog.Int("keys_removed", keys),
	)
}

// LogJournalError logs a journal write problem (non-fatal).
func LogJournalError(logger *slog.Logger, event, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write degraded",
		slog.String("event", event),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
