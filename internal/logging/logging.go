// Package logging adapts log/slog to the middleware.Logger interface.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/toolhost/middleware"
)

// Logger writes middleware log entries through a slog.Logger.
type Logger struct {
	log *slog.Logger
}

var _ middleware.Logger = (*Logger)(nil)

// New creates a logger writing to w. Level is one of debug, info, warn or
// error; format is text or json.
func New(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &Logger{log: slog.New(h)}, nil
}

// FromSlog wraps an existing slog.Logger.
func FromSlog(l *slog.Logger) *Logger {
	return &Logger{log: l}
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields ...middleware.Field) *Logger {
	return &Logger{log: l.log.With(attrs(fields)...)}
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.log
}

func (l *Logger) Debug(msg string, fields ...middleware.Field) {
	l.log.Debug(msg, attrs(fields)...)
}

func (l *Logger) Info(msg string, fields ...middleware.Field) {
	l.log.Info(msg, attrs(fields)...)
}

func (l *Logger) Warn(msg string, fields ...middleware.Field) {
	l.log.Warn(msg, attrs(fields)...)
}

func (l *Logger) Error(msg string, fields ...middleware.Field) {
	l.log.Error(msg, attrs(fields)...)
}

func attrs(fields []middleware.Field) []any {
	if len(fields) == 0 {
		return nil
	}
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}
