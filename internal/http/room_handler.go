package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/scheduler"
)

const qrCodeSize = 512

type roomService interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
	GetRoom(ctx context.Context, id string) (application.Room, error)
}

type roomStatusService interface {
	RoomStatus(ctx context.Context, roomID string) (application.RoomStatus, error)
	NextUpcoming(ctx context.Context, roomID string) (scheduler.Entry, bool, error)
}

type RoomHandler struct {
	rooms     roomService
	status    roomStatusService
	baseURL   string
	responder responder
	logger    *slog.Logger
}

// NewRoomHandler builds the room endpoints. baseURL is the public address
// that door-sign QR codes point at.
func NewRoomHandler(rooms roomService, status roomStatusService, baseURL string, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{
		rooms:     rooms,
		status:    status,
		baseURL:   strings.TrimRight(baseURL, "/"),
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

// Get returns one room together with its live status.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.status == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := pathParam(r.Context(), "id")
	status, err := h.status.RoomStatus(r.Context(), roomID)
	if err != nil {
		h.log(r.Context(), "Get", "room_id", roomID).ErrorContext(r.Context(), "failed to load room status", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomStatusDTO(status))
}

func (h *RoomHandler) Next(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.status == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := pathParam(r.Context(), "id")
	entry, ok, err := h.status.NextUpcoming(r.Context(), roomID)
	if err != nil {
		h.log(r.Context(), "Next", "room_id", roomID).ErrorContext(r.Context(), "failed to find next class", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := nextClassResponse{RoomID: roomID}
	if ok {
		resp.Next = optionalSchedule(&entry)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// QRCode renders a PNG linking to the room's status page.
func (h *RoomHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := pathParam(r.Context(), "id")
	logger := h.log(r.Context(), "QRCode", "room_id", roomID)

	room, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	png, err := qrcode.Encode(h.roomURL(room.ID), qrcode.Medium, qrCodeSize)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to encode qr code", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.WarnContext(r.Context(), "failed to write qr code", "error", err)
	}
}

func (h *RoomHandler) roomURL(roomID string) string {
	return h.baseURL + "/rooms/" + url.PathEscape(roomID)
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type nextClassResponse struct {
	RoomID string       `json:"room_id"`
	Next   *scheduleDTO `json:"next"`
}
