package logging

import "log/slog"

// EnableTrace turns on per-recompute debug lines (log.trace in config).
var EnableTrace = false

// Trace logs at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
