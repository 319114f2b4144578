package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/roomsync/internal/logging"
	"github.com/example/roomsync/internal/scheduler"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.OrDefault(logger)
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountPending):
		return "account_pending"
	case errors.Is(err, ErrAccountRejected):
		return "account_rejected"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, scheduler.ErrConflict):
		return "conflict"
	case errors.Is(err, scheduler.ErrInvalidTimeOrder),
		errors.Is(err, scheduler.ErrInvalidDateOrder),
		errors.Is(err, scheduler.ErrInvalidDay):
		return "rejected"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
