package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// NewLogger installs a JSON slog handler as the process default.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}))
	slog.SetDefault(logger)
	return logger
}

// TuneProcs aligns GOMAXPROCS with the container CPU quota.
func TuneProcs(logger *slog.Logger) error {
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...),
			"event", "bootstrap_maxprocs",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}))
	return err
}
