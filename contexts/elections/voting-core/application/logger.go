package application

import "log/slog"

// ModuleName is the value of the "module" attribute on every log line emitted
// by this context.
const ModuleName = "elections/voting-core"

// ResolveLogger falls back to the process default logger.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
