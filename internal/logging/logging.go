// Package logging builds the slog loggers used across filestore.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w at level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Stderr returns a text logger on standard error at level.
func Stderr(level slog.Level) *slog.Logger {
	return New(os.Stderr, level)
}

// Discard returns a logger that drops every record. Library types use it
// until a caller supplies one.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
