package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AdminUserID identifies the single administrator principal.
const AdminUserID = "admin"

// TokenIssuer mints and verifies stateless session tokens.
type TokenIssuer interface {
	Issue(principal Principal, now time.Time) (token string, expiresAt time.Time, err error)
	Parse(token string, now time.Time) (Principal, error)
}

// AuthService coordinates the admin, teacher and student sign-in flows.
type AuthService struct {
	users       UserRepository
	tokens      TokenIssuer
	passkeyHash string
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserRepository, tokens TokenIssuer, passkeyHash string, idGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, tokens, passkeyHash, idGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
// passkeyHash is an encoded argon2id hash produced by HashPasskey.
func NewAuthServiceWithLogger(users UserRepository, tokens TokenIssuer, passkeyHash string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		passkeyHash: passkeyHash,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// AdminLogin verifies the shared admin passkey and issues an admin session.
func (s *AuthService) AdminLogin(ctx context.Context, passkey string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token issuer not configured")
		return
	}

	logger := s.loggerWith(ctx, "AdminLogin")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "admin login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "admin login succeeded")
	}()

	if passkey == "" || s.passkeyHash == "" {
		err = ErrInvalidCredentials
		return
	}
	if err = VerifyPasskey(s.passkeyHash, passkey); err != nil {
		return
	}

	session, err = s.issue(Principal{UserID: AdminUserID, Name: "Administrator", Role: RoleAdmin})
	return
}

// TeacherLogin signs in an approved teacher. Unknown emails are registered
// as pending and reported with LoginRegistered; pending and rejected
// accounts receive an explanatory message and no session.
func (s *AuthService) TeacherLogin(ctx context.Context, params TeacherLoginParams) (result TeacherLoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.tokens == nil {
		err = fmt.Errorf("auth dependencies not configured")
		return
	}

	email := normalizeEmail(params.Email)
	name := strings.TrimSpace(params.Name)

	logger := s.loggerWith(ctx, "TeacherLogin", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "teacher login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"outcome", string(result.Outcome),
		).InfoContext(ctx, "teacher login resolved")
	}()

	if vErr := validateTeacherIdentity(email, name); vErr.HasErrors() {
		err = vErr
		return
	}

	user, gErr := s.users.GetUserByEmail(ctx, email)
	switch {
	case gErr == nil:
	case isNotFound(gErr):
		now := s.now()
		user = User{
			ID:        s.idGenerator(),
			Email:     email,
			Name:      name,
			Role:      RoleTeacher,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if cErr := s.users.CreateUser(ctx, user); cErr != nil {
			err = mapRepoError(cErr)
			return
		}
		result = TeacherLoginResult{Outcome: LoginRegistered, Message: MessageRequestSent, User: user}
		return
	default:
		err = mapRepoError(gErr)
		return
	}

	if user.Role != RoleTeacher {
		err = ErrInvalidCredentials
		return
	}

	result.User = user
	switch user.Status {
	case StatusPending:
		result.Outcome = LoginPending
		result.Message = MessagePendingApproval
	case StatusRejected:
		result.Outcome = LoginRejected
		result.Message = MessageRequestDeclined
	case StatusApproved:
		result.Outcome = LoginGranted
		result.Session, err = s.issue(Principal{UserID: user.ID, Name: user.Name, Email: user.Email, Role: RoleTeacher})
	default:
		err = fmt.Errorf("unknown account status %q", user.Status)
	}
	return
}

// StudentLogin issues a read-only session. Students are not persisted.
func (s *AuthService) StudentLogin(ctx context.Context, name string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token issuer not configured")
		return
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Student"
	}

	logger := s.loggerWith(ctx, "StudentLogin")
	session, err = s.issue(Principal{UserID: s.idGenerator(), Name: name, Role: RoleStudent})
	if err != nil {
		logger.ErrorContext(ctx, "student login failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.With("principal_id", session.Principal.UserID).InfoContext(ctx, "student login succeeded")
	return
}

// ValidateSession verifies a token and returns its principal. Teacher
// tokens are only honoured while the account stays approved.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token issuer not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	principal, err = s.tokens.Parse(trimmed, s.now())
	if err != nil {
		err = ErrInvalidCredentials
		return
	}

	if !principal.IsTeacher() {
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	user, gErr := s.users.GetUser(ctx, principal.UserID)
	if gErr != nil {
		if isNotFound(gErr) {
			err = ErrInvalidCredentials
			return
		}
		err = mapRepoError(gErr)
		return
	}
	switch user.Status {
	case StatusApproved:
		principal.Name = user.Name
		principal.Email = user.Email
	case StatusRejected:
		err = ErrAccountRejected
	default:
		err = ErrAccountPending
	}
	return
}

func (s *AuthService) issue(principal Principal) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(principal, s.now())
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, Principal: principal}, nil
}
