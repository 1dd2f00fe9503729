package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. JSON to stdout so log shippers can
// parse without configuration.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
