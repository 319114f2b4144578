package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/roomsync/internal/application"
)

type authService interface {
	AdminLogin(ctx context.Context, passkey string) (application.Session, error)
	TeacherLogin(ctx context.Context, params application.TeacherLoginParams) (application.TeacherLoginResult, error)
	StudentLogin(ctx context.Context, name string) (application.Session, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// AdminLogin exchanges the administrator passkey for a session.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}

	logger := h.log(r.Context(), "AdminLogin")
	session, err := h.service.AdminLogin(r.Context(), req.Passkey)
	if err != nil {
		logger.WarnContext(r.Context(), "admin login rejected", "error", err, "error_kind", application.ErrorKind(err))
		if errors.Is(err, application.ErrInvalidCredentials) {
			h.responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
				ErrorCode: "AUTH_INVALID_CREDENTIALS",
				Message:   application.MessageInvalidPasskey,
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "admin authenticated")
	h.writeSession(r.Context(), w, session)
}

// TeacherLogin signs a teacher in, or registers them for approval.
func (h *AuthHandler) TeacherLogin(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req teacherLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "TeacherLogin", "email", email)

	result, err := h.service.TeacherLogin(r.Context(), application.TeacherLoginParams{Email: email, Name: req.Name})
	if err != nil {
		logger.ErrorContext(r.Context(), "teacher login failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger = logger.With("outcome", result.Outcome, "user_id", result.User.ID)
	switch result.Outcome {
	case application.LoginGranted:
		logger.InfoContext(r.Context(), "teacher authenticated")
		h.writeSession(r.Context(), w, result.Session)
	case application.LoginRegistered:
		logger.InfoContext(r.Context(), "teacher registration requested")
		h.responder.writeJSON(r.Context(), w, http.StatusAccepted, teacherStatusResponse{
			Status:  string(result.Outcome),
			Message: result.Message,
			User:    toUserDTO(result.User),
		})
	default:
		logger.InfoContext(r.Context(), "teacher login deferred")
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, teacherStatusResponse{
			Status:  string(result.Outcome),
			Message: result.Message,
			User:    toUserDTO(result.User),
		})
	}
}

// StudentLogin issues a read-only session.
func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req studentLoginRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.responder.writeRequestError(w, r, err)
			return
		}
	}

	session, err := h.service.StudentLogin(r.Context(), req.Name)
	if err != nil {
		h.log(r.Context(), "StudentLogin").ErrorContext(r.Context(), "student login failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.writeSession(r.Context(), w, session)
}

func (h *AuthHandler) writeSession(ctx context.Context, w http.ResponseWriter, session application.Session) {
	setSessionCookie(w, session.Token, session.ExpiresAt)
	w.Header().Set("X-Session-Token", session.Token)
	h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{
		Token:     session.Token,
		ExpiresAt: formatTime(session.ExpiresAt),
		Principal: principalDTO{
			UserID: session.Principal.UserID,
			Name:   session.Principal.Name,
			Email:  session.Principal.Email,
			Role:   string(session.Principal.Role),
		},
	})
}

type adminLoginRequest struct {
	Passkey string `json:"passkey" validate:"required"`
}

type teacherLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=120"`
}

type studentLoginRequest struct {
	Name string `json:"name" validate:"max=120"`
}

type principalDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	Principal principalDTO `json:"principal"`
}

type teacherStatusResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	User    userDTO `json:"user"`
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
