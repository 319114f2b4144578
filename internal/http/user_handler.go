package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/roomsync/internal/application"
)

type userService interface {
	ListPending(ctx context.Context, principal application.Principal) ([]application.User, error)
	Approve(ctx context.Context, principal application.Principal, userID string) (application.User, error)
	Reject(ctx context.Context, principal application.Principal, userID string) (application.User, error)
}

type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// Pending lists teacher accounts awaiting a decision.
func (h *UserHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	users, err := h.service.ListPending(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Pending").ErrorContext(r.Context(), "failed to list pending users", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := listUsersResponse{Users: make([]userDTO, 0, len(users))}
	for _, user := range users {
		resp.Users = append(resp.Users, toUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.decide(w, r, "Approve", h.service.Approve)
}

func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.decide(w, r, "Reject", h.service.Reject)
}

func (h *UserHandler) decide(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, application.Principal, string) (application.User, error)) {
	userID := pathParam(r.Context(), "id")
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "user_id", userID, "actor_id", principal.UserID)

	user, err := apply(r.Context(), principal, userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update account status", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account status updated", "status", user.Status)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

type listUsersResponse struct {
	Users []userDTO `json:"users"`
}
