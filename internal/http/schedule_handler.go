package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/recurrence"
	"github.com/example/roomsync/internal/scheduler"
)

type scheduleService interface {
	AddClass(ctx context.Context, params application.AddClassParams) (scheduler.Entry, error)
	RemoveSchedule(ctx context.Context, principal application.Principal, id string) error
	ListSchedule(ctx context.Context, filter application.ScheduleFilter) ([]scheduler.Entry, error)
	Sections(ctx context.Context) ([]string, error)
	Timetable(ctx context.Context, params application.TimetableParams) ([]recurrence.Occurrence, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

// Create adds a recurring class.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req classRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	entry, err := h.service.AddClass(r.Context(), application.AddClassParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.log(r.Context(), "Create", "room_id", req.RoomID).WarnContext(r.Context(), "class not added", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toScheduleDTO(entry))
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathParam(r.Context(), "id")
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.RemoveSchedule(r.Context(), principal, id); err != nil {
		h.log(r.Context(), "Delete", "schedule_id", id).ErrorContext(r.Context(), "failed to remove schedule", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List returns schedule entries filtered by the day, room and section query
// parameters.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.ScheduleFilter{
		RoomID:  strings.TrimSpace(query.Get("room")),
		Section: strings.TrimSpace(query.Get("section")),
	}
	if raw := strings.TrimSpace(query.Get("day")); raw != "" {
		day, err := scheduler.ParseWeekday(raw)
		if err != nil {
			h.responder.writeRequestError(w, r, &requestError{err: err, Fields: map[string]string{"day": "day must be a weekday name"}})
			return
		}
		filter.Day = &day
	}

	entries, err := h.service.ListSchedule(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list schedules", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSchedulesResponse{Schedules: toScheduleDTOs(entries)})
}

func (h *ScheduleHandler) Sections(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sections, err := h.service.Sections(r.Context())
	if err != nil {
		h.log(r.Context(), "Sections").ErrorContext(r.Context(), "failed to list sections", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if sections == nil {
		sections = []string{}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sectionsResponse{Sections: sections})
}

// Timetable expands the schedule into dated occurrences between from and to.
func (h *ScheduleHandler) Timetable(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	req := timetableRequest{
		RoomID: strings.TrimSpace(query.Get("room")),
		From:   strings.TrimSpace(query.Get("from")),
		To:     strings.TrimSpace(query.Get("to")),
	}
	if err := validateStruct(&req); err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}
	from, _ := scheduler.ParseDate(req.From)
	to, _ := scheduler.ParseDate(req.To)

	occurrences, err := h.service.Timetable(r.Context(), application.TimetableParams{RoomID: req.RoomID, From: from, To: to})
	if err != nil {
		h.log(r.Context(), "Timetable").ErrorContext(r.Context(), "failed to expand timetable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, timetableResponse{
		From:        from.String(),
		To:          to.String(),
		Occurrences: toOccurrenceDTOs(occurrences),
	})
}

type classRequest struct {
	RoomID    string `json:"room_id" validate:"required"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Section   string `json:"section" validate:"max=100"`
	Teacher   string `json:"teacher" validate:"required,max=200"`
	Day       string `json:"day_of_week" validate:"required,weekday"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
}

// toInput assumes the request already passed validation.
func (req classRequest) toInput() application.ClassInput {
	day, _ := scheduler.ParseWeekday(req.Day)
	start, _ := scheduler.ParseClockTime(req.StartTime)
	end, _ := scheduler.ParseClockTime(req.EndTime)
	input := application.ClassInput{
		RoomID:  strings.TrimSpace(req.RoomID),
		Subject: req.Subject,
		Section: req.Section,
		Teacher: req.Teacher,
		Day:     day,
		Start:   start,
		End:     end,
	}
	if req.StartDate != "" {
		input.StartDate, _ = scheduler.ParseDate(req.StartDate)
	}
	if req.EndDate != "" {
		input.EndDate, _ = scheduler.ParseDate(req.EndDate)
	}
	return input
}

type timetableRequest struct {
	RoomID string `json:"room"`
	From   string `json:"from" validate:"required,isodate"`
	To     string `json:"to" validate:"required,isodate"`
}

type listSchedulesResponse struct {
	Schedules []scheduleDTO `json:"schedules"`
}

type sectionsResponse struct {
	Sections []string `json:"sections"`
}

type timetableResponse struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Occurrences []occurrenceDTO `json:"occurrences"`
}
