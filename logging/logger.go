// Package logging builds the structured logger. The terminal is owned by the
// animation, so records go to a debug file or nowhere.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// NewLogger creates a logger writing to w with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenDebugFile opens path for appending and marks the start of a session.
func OpenDebugFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "=== neo debug log started %s ===\n", time.Now().Format(time.RFC3339)); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write debug file: %w", err)
	}
	return f, nil
}
