package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/roomsync/internal/application"
)

// RouterConfig wires handlers into the router. Nil handlers leave their
// routes unregistered.
type RouterConfig struct {
	Auth       *AuthHandler
	Rooms      *RoomHandler
	Occupancy  *OccupancyHandler
	Schedules  *ScheduleHandler
	Bookings   *BookingHandler
	Users      *UserHandler
	Assistant  *AssistantHandler
	Sessions   SessionValidator
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := httprouter.New()
	responder := newResponder(cfg.Logger)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, nil)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		responder.loggerFor(r.Context()).ErrorContext(r.Context(), "handler panicked", "panic", v)
		responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
	}

	open := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, h)
	}
	var session func(http.Handler) http.Handler
	if cfg.Sessions != nil {
		session = RequireSession(cfg.Sessions, cfg.Logger)
	}
	protected := func(method, path string, h http.HandlerFunc, roles ...application.Role) {
		if session == nil {
			return
		}
		middleware := []func(http.Handler) http.Handler{session}
		if len(roles) > 0 {
			middleware = append(middleware, RequireRole(cfg.Logger, roles...))
		}
		router.Handler(method, path, chain(h, middleware...))
	}

	open(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Auth != nil {
		open(http.MethodPost, "/sessions/admin", cfg.Auth.AdminLogin)
		open(http.MethodPost, "/sessions/teacher", cfg.Auth.TeacherLogin)
		open(http.MethodPost, "/sessions/student", cfg.Auth.StudentLogin)
	}

	if cfg.Rooms != nil {
		protected(http.MethodGet, "/rooms", cfg.Rooms.List)
		protected(http.MethodGet, "/rooms/:id", cfg.Rooms.Get)
		protected(http.MethodGet, "/rooms/:id/next", cfg.Rooms.Next)
		protected(http.MethodGet, "/rooms/:id/qr.png", cfg.Rooms.QRCode)
	}

	if cfg.Occupancy != nil {
		protected(http.MethodGet, "/occupancy", cfg.Occupancy.Snapshot)
		protected(http.MethodGet, "/occupancy/available", cfg.Occupancy.Available)
		protected(http.MethodGet, "/occupancy/in-use", cfg.Occupancy.InUse)
		protected(http.MethodGet, "/dashboard", cfg.Occupancy.Dashboard)
	}

	if cfg.Schedules != nil {
		protected(http.MethodGet, "/schedules", cfg.Schedules.List)
		protected(http.MethodGet, "/schedules/sections", cfg.Schedules.Sections)
		protected(http.MethodGet, "/timetable", cfg.Schedules.Timetable)
		protected(http.MethodPost, "/schedules", cfg.Schedules.Create, application.RoleAdmin)
		protected(http.MethodDelete, "/schedules/:id", cfg.Schedules.Delete, application.RoleAdmin)
	}

	if cfg.Bookings != nil {
		protected(http.MethodPost, "/bookings", cfg.Bookings.Create, application.RoleTeacher)
		protected(http.MethodGet, "/bookings", cfg.Bookings.List, application.RoleTeacher)
		protected(http.MethodDelete, "/bookings/:id", cfg.Bookings.Delete, application.RoleTeacher)
	}

	if cfg.Users != nil {
		protected(http.MethodGet, "/users/pending", cfg.Users.Pending, application.RoleAdmin)
		protected(http.MethodPost, "/users/:id/approve", cfg.Users.Approve, application.RoleAdmin)
		protected(http.MethodPost, "/users/:id/reject", cfg.Users.Reject, application.RoleAdmin)
	}

	if cfg.Assistant != nil {
		protected(http.MethodPost, "/assistant", cfg.Assistant.Ask)
	}

	return chain(router, cfg.Middleware...)
}
