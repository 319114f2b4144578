package http

import (
	"context"
	"log/slog"
	"net/http"
)

type assistantService interface {
	Configured() bool
	Ask(ctx context.Context, question string) string
}

type AssistantHandler struct {
	service   assistantService
	responder responder
	logger    *slog.Logger
}

func NewAssistantHandler(service assistantService, logger *slog.Logger) *AssistantHandler {
	base := defaultLogger(logger)
	return &AssistantHandler{service: service, responder: newResponder(base), logger: base}
}

// Ask answers a free form question. Failures of the language model surface
// as an apology in the answer, never as an error status.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}

	answer := h.service.Ask(r.Context(), req.Question)
	handlerLogger(r.Context(), h.logger, "AssistantHandler", "Ask").
		DebugContext(r.Context(), "assistant answered", "question_length", len(req.Question))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, askResponse{Answer: answer, Configured: h.service.Configured()})
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type askResponse struct {
	Answer     string `json:"answer"`
	Configured bool   `json:"configured"`
}
