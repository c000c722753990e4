package core

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger attaches a slog logger to the context.
// Handlers attach a logger that already carries request_id (and session_id when known).
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger attached to ctx, or slog.Default() if absent.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// ComponentLogger picks the context logger over the fallback and tags it with the component name.
func ComponentLogger(ctx context.Context, fallback *slog.Logger, component string) *slog.Logger {
	logger := fallback
	if ctxLogger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && ctxLogger != nil {
		logger = ctxLogger
	}
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}
