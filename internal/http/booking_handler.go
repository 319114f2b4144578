package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/scheduler"
)

type bookingService interface {
	BookMakeup(ctx context.Context, params application.BookMakeupParams) (scheduler.Entry, error)
	MyBookings(ctx context.Context, principal application.Principal) ([]scheduler.Entry, error)
	CancelBooking(ctx context.Context, principal application.Principal, id string) error
}

// BookingHandler serves the teacher facing makeup booking endpoints.
type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req makeupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	entry, err := h.service.BookMakeup(r.Context(), application.BookMakeupParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.log(r.Context(), "Create", "room_id", req.RoomID, "date", req.Date).WarnContext(r.Context(), "makeup class not booked", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toScheduleDTO(entry))
}

// List returns the caller's bookings, newest date first.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	entries, err := h.service.MyBookings(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list bookings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toScheduleDTOs(entries)})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathParam(r.Context(), "id")
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.CancelBooking(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "Delete", "schedule_id", id).ErrorContext(r.Context(), "failed to cancel booking", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type makeupRequest struct {
	RoomID    string `json:"room_id" validate:"required"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Section   string `json:"section" validate:"required,max=100"`
	Date      string `json:"date" validate:"required,isodate"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

func (req makeupRequest) toInput() application.MakeupInput {
	date, _ := scheduler.ParseDate(req.Date)
	start, _ := scheduler.ParseClockTime(req.StartTime)
	end, _ := scheduler.ParseClockTime(req.EndTime)
	return application.MakeupInput{
		RoomID:  strings.TrimSpace(req.RoomID),
		Subject: req.Subject,
		Section: req.Section,
		Date:    date,
		Start:   start,
		End:     end,
	}
}

type listBookingsResponse struct {
	Bookings []scheduleDTO `json:"bookings"`
}
