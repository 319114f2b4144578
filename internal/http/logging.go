package http

import (
	"context"
	"log/slog"

	"github.com/example/roomsync/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.OrDefault(logger)
}

// handlerLogger prefers the request logger installed by RequestLogger so
// handler records carry the request_id.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, fallback, "handler", handlerName, operation, attrs...)
}
