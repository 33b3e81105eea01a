// Package telemetry sets up structured logging and in-process metrics.
//
// Metrics live in a private Prometheus registry owned by a Collector. There
// is no scrape endpoint; the CLI reads the registry through Snapshot and
// prints it in verbose mode.
package telemetry

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" (any case) to
// a slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewLogger builds a logger writing to w.
//
// format: "json" selects the JSON handler, anything else the text handler.
// Source locations are included only at debug level.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetupLogger builds a logger with NewLogger and installs it as the slog
// default, so package-level slog calls use it too.
func SetupLogger(w io.Writer, format, level string) *slog.Logger {
	logger := NewLogger(w, format, level)
	slog.SetDefault(logger)
	logger.Debug("logger initialised", "format", format, "level", ParseLevel(level).String())
	return logger
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
