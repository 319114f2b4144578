package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/scheduler"
)

type occupancyService interface {
	Now() scheduler.TimeContext
	Policy() scheduler.SundayPolicy
	Snapshot(ctx context.Context, tc *scheduler.TimeContext) (application.OccupancySnapshot, error)
	Available(ctx context.Context) ([]application.Room, error)
	InUse(ctx context.Context) ([]application.RoomStatus, error)
	Dashboard(ctx context.Context) (application.Dashboard, error)
}

type OccupancyHandler struct {
	service   occupancyService
	responder responder
	logger    *slog.Logger
}

func NewOccupancyHandler(service occupancyService, logger *slog.Logger) *OccupancyHandler {
	base := defaultLogger(logger)
	return &OccupancyHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *OccupancyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "OccupancyHandler", operation, attrs...)
}

// Snapshot reports every room's state now, or at the moment named by the
// day, time and date query parameters.
func (h *OccupancyHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	at, err := parseTimeContext(r, h.service.Now(), h.service.Policy())
	if err != nil {
		h.responder.writeRequestError(w, r, err)
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), at)
	if err != nil {
		h.log(r.Context(), "Snapshot").ErrorContext(r.Context(), "failed to resolve occupancy", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupancyResponse{
		Context: toTimeContextDTO(snapshot.Context),
		Rooms:   toRoomStatusDTOs(snapshot.Rooms),
	})
}

func (h *OccupancyHandler) Available(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.service.Available(r.Context())
	if err != nil {
		h.log(r.Context(), "Available").ErrorContext(r.Context(), "failed to list free rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availableResponse{
		Context: toTimeContextDTO(h.service.Now()),
		Rooms:   toRoomDTOs(rooms),
	})
}

func (h *OccupancyHandler) InUse(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	statuses, err := h.service.InUse(r.Context())
	if err != nil {
		h.log(r.Context(), "InUse").ErrorContext(r.Context(), "failed to list rooms in use", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupancyResponse{
		Context: toTimeContextDTO(h.service.Now()),
		Rooms:   toRoomStatusDTOs(statuses),
	})
}

func (h *OccupancyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.log(r.Context(), "Dashboard").ErrorContext(r.Context(), "failed to build dashboard", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	utilisation := make([]utilisationDTO, 0, len(dashboard.Utilisation))
	for _, u := range dashboard.Utilisation {
		utilisation = append(utilisation, utilisationDTO{RoomID: u.RoomID, Name: u.Name, Entries: u.Entries})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dashboardResponse{
		Context:      toTimeContextDTO(dashboard.Context),
		TotalRooms:   dashboard.TotalRooms,
		TotalClasses: dashboard.TotalClasses,
		OccupiedNow:  dashboard.OccupiedNow,
		Utilisation:  utilisation,
	})
}

// parseTimeContext returns nil when no query parameter is set. A date alone
// implies its weekday, read through policy the same way the live clock is;
// otherwise day and time are both required. An explicit day is taken as is.
func parseTimeContext(r *http.Request, now scheduler.TimeContext, policy scheduler.SundayPolicy) (*scheduler.TimeContext, error) {
	query := r.URL.Query()
	day := strings.TrimSpace(query.Get("day"))
	clock := strings.TrimSpace(query.Get("time"))
	date := strings.TrimSpace(query.Get("date"))
	if day == "" && clock == "" && date == "" {
		return nil, nil
	}

	fields := map[string]string{}
	tc := scheduler.TimeContext{Day: now.Day, Time: now.Time, Date: now.Date}

	if date != "" {
		parsed, err := scheduler.ParseDate(date)
		if err != nil {
			fields["date"] = "date must use YYYY-MM-DD"
		} else {
			tc.Date = parsed
			tc.Day = policy.Day(parsed.Weekday())
		}
	}
	if day != "" {
		parsed, err := scheduler.ParseWeekday(day)
		if err != nil {
			fields["day"] = "day must be a weekday name"
		} else {
			tc.Day = parsed
		}
	} else if date == "" {
		fields["day"] = "day is required"
	}
	if clock != "" {
		parsed, err := scheduler.ParseClockTime(clock)
		if err != nil {
			fields["time"] = "time must use HH:MM"
		} else {
			tc.Time = parsed
		}
	} else {
		fields["time"] = "time is required"
	}

	if len(fields) > 0 {
		return nil, &requestError{err: errors.New("invalid time context"), Fields: fields}
	}
	return &tc, nil
}

type occupancyResponse struct {
	Context timeContextDTO  `json:"context"`
	Rooms   []roomStatusDTO `json:"rooms"`
}

type availableResponse struct {
	Context timeContextDTO `json:"context"`
	Rooms   []roomDTO      `json:"rooms"`
}

type utilisationDTO struct {
	RoomID  string `json:"room_id"`
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

type dashboardResponse struct {
	Context      timeContextDTO   `json:"context"`
	TotalRooms   int              `json:"total_rooms"`
	TotalClasses int              `json:"total_classes"`
	OccupiedNow  int              `json:"occupied_now"`
	Utilisation  []utilisationDTO `json:"utilisation"`
}
