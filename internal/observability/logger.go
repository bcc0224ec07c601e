package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLoggerTo builds a slog logger writing to w, for callers that cannot log
// to stdout (the CLI writes records there). Services use the shared
// observability.NewLogger instead. format is "json" or "text"; level is one
// of debug, info, warn, error (default info).
func NewLoggerTo(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level, falling back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
