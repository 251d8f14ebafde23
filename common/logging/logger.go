// Package logging wraps log/slog with the conventions shared by the
// controller, the bridge, and the CLI: JSON output by default, request-id
// extraction from HTTP contexts, and the field names in fields.go.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/adam-platform/instrument-bridge/common/middleware"
)

// Logger embeds slog.Logger and adds context-aware variants that pull the
// request id out of the context.
type Logger struct {
	*slog.Logger
}

// New builds a Logger writing to stdout. format is "json" or "text"; anything
// else falls back to JSON. Source locations are attached only at error level
// and above.
func New(level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelError,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Default wraps the process-wide slog default.
func Default() *Logger {
	return &Logger{Logger: slog.Default()}
}

// SetDefault installs l as the process-wide default, for both slog and the
// legacy log package.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

// WithContext returns the underlying logger enriched with the request id
// carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		return l.Logger.With(slog.String("request_id", reqID))
	}
	return l.Logger
}

// DebugContext logs at debug level with the request id from ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level with the request id from ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level with the request id from ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level with the request id from ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).ErrorContext(ctx, msg, args...)
}

// With returns a Logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithGroup returns a Logger that nests subsequent attributes under name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name)}
}

// ParseLevel maps a config string to a slog.Level. Unrecognized values mean
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
