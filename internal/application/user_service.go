package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"
)

// UserService manages teacher account approval.
type UserService struct {
	users  UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, now, nil)
}

// NewUserServiceWithLogger wires dependencies with a specified logger.
func NewUserServiceWithLogger(users UserRepository, now func() time.Time, logger *slog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// ListUsers returns every registered account for administrators, in
// registration order.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return users, nil
}

// ListPending returns teacher accounts waiting for a decision.
func (s *UserService) ListPending(ctx context.Context, principal Principal) ([]User, error) {
	users, err := s.ListUsers(ctx, principal)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(users, func(u User) bool {
		return u.Role != RoleTeacher || u.Status != StatusPending
	}), nil
}

// Approve lets a pending teacher sign in.
func (s *UserService) Approve(ctx context.Context, principal Principal, userID string) (User, error) {
	return s.decide(ctx, "Approve", principal, userID, StatusApproved)
}

// Reject declines a pending teacher request.
func (s *UserService) Reject(ctx context.Context, principal Principal, userID string) (User, error) {
	return s.decide(ctx, "Reject", principal, userID, StatusRejected)
}

func (s *UserService) decide(ctx context.Context, operation string, principal Principal, userID string, next AccountStatus) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	userID = strings.TrimSpace(userID)
	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "account decision failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(user.Status)).InfoContext(ctx, "account decision recorded")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	user, err = s.users.GetUser(ctx, userID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if user.Role != RoleTeacher || user.Status != StatusPending {
		err = ErrInvalidTransition
		return
	}

	user.Status = next
	user.UpdatedAt = s.now()
	if uErr := s.users.UpdateUser(ctx, user); uErr != nil {
		err = mapRepoError(uErr)
		return
	}
	return
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateTeacherIdentity(email, name string) *ValidationError {
	vErr := &ValidationError{}

	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if strings.TrimSpace(name) == "" {
		vErr.add("name", "name is required")
	}

	return vErr
}

func isNotFound(err error) bool {
	return errors.Is(mapRepoError(err), ErrNotFound)
}
