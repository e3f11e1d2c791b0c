package initializers

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger in production and a text logger otherwise
func NewLogger(production bool) *slog.Logger {
	return newLogger(os.Stdout, production)
}

func newLogger(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
