package http

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/recurrence"
	"github.com/example/roomsync/internal/scheduler"
)

var (
	adminPrincipal   = application.Principal{UserID: "admin", Name: "Administrator", Role: application.RoleAdmin}
	teacherPrincipal = application.Principal{UserID: "teacher-1", Name: "Dr. Smith", Email: "smith@example.edu", Role: application.RoleTeacher}
	studentPrincipal = application.Principal{UserID: "student-1", Name: "Student", Role: application.RoleStudent}
)

const (
	adminToken   = "admin-token"
	teacherToken = "teacher-token"
	studentToken = "student-token"
	pendingToken = "pending-token"
)

type sessionStub struct{}

func (sessionStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	switch token {
	case adminToken:
		return adminPrincipal, nil
	case teacherToken:
		return teacherPrincipal, nil
	case studentToken:
		return studentPrincipal, nil
	case pendingToken:
		return application.Principal{}, application.ErrAccountPending
	}
	return application.Principal{}, application.ErrInvalidCredentials
}

type authStub struct {
	adminErr error
	teacher  application.TeacherLoginResult
	expires  time.Time
}

func (a *authStub) AdminLogin(_ context.Context, passkey string) (application.Session, error) {
	if a.adminErr != nil {
		return application.Session{}, a.adminErr
	}
	if passkey != "letmein" {
		return application.Session{}, application.ErrInvalidCredentials
	}
	return application.Session{Token: adminToken, ExpiresAt: a.expires, Principal: adminPrincipal}, nil
}

func (a *authStub) TeacherLogin(_ context.Context, params application.TeacherLoginParams) (application.TeacherLoginResult, error) {
	result := a.teacher
	result.User.Email = params.Email
	result.User.Name = params.Name
	return result, nil
}

func (a *authStub) StudentLogin(_ context.Context, name string) (application.Session, error) {
	principal := studentPrincipal
	if name != "" {
		principal.Name = name
	}
	return application.Session{Token: studentToken, ExpiresAt: a.expires, Principal: principal}, nil
}

func sampleRooms() []application.Room {
	return []application.Room{
		{ID: "cc101", Name: "CC101", Capacity: 40, Building: "Comscie Building", Features: []string{"Projector"}},
		{ID: "cc201", Name: "CC201", Capacity: 30, Building: "Comscie Building"},
	}
}

func sampleEntry(id, roomID string) scheduler.Entry {
	return scheduler.Entry{
		ID:        id,
		RoomID:    roomID,
		Subject:   "Intro to Programming",
		Section:   "BSCS 1-A",
		Teacher:   "Dr. Smith",
		Day:       scheduler.Monday,
		Start:     scheduler.Clock(9, 0),
		End:       scheduler.Clock(10, 30),
		StartDate: scheduler.NewDate(2025, 1, 1),
		EndDate:   scheduler.NewDate(2025, 12, 31),
		Color:     "bg-blue-500",
		Kind:      scheduler.KindClass,
	}
}

type roomStub struct{}

func (roomStub) ListRooms(context.Context) ([]application.Room, error) { return sampleRooms(), nil }

func (roomStub) GetRoom(_ context.Context, id string) (application.Room, error) {
	for _, room := range sampleRooms() {
		if room.ID == id {
			return room, nil
		}
	}
	return application.Room{}, application.ErrNotFound
}

var stubContext = scheduler.TimeContext{Day: scheduler.Monday, Time: scheduler.Clock(9, 30), Date: scheduler.NewDate(2025, 3, 3)}

type occupancyStub struct {
	mu      sync.Mutex
	queried []*scheduler.TimeContext
	policy  scheduler.SundayPolicy
}

func (o *occupancyStub) Now() scheduler.TimeContext { return stubContext }

func (o *occupancyStub) Policy() scheduler.SundayPolicy {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.policy == "" {
		return scheduler.SundayAsMonday
	}
	return o.policy
}

func (o *occupancyStub) setPolicy(policy scheduler.SundayPolicy) {
	o.mu.Lock()
	o.policy = policy
	o.mu.Unlock()
}

func (o *occupancyStub) Snapshot(_ context.Context, tc *scheduler.TimeContext) (application.OccupancySnapshot, error) {
	o.mu.Lock()
	o.queried = append(o.queried, tc)
	o.mu.Unlock()

	at := stubContext
	if tc != nil {
		at = *tc
	}
	occupant := sampleEntry("s1", "cc101")
	return application.OccupancySnapshot{Context: at, Rooms: []application.RoomStatus{
		{Room: sampleRooms()[0], Occupant: &occupant},
		{Room: sampleRooms()[1]},
	}}, nil
}

func (o *occupancyStub) Available(context.Context) ([]application.Room, error) {
	return sampleRooms()[1:], nil
}

func (o *occupancyStub) InUse(context.Context) ([]application.RoomStatus, error) {
	occupant := sampleEntry("s1", "cc101")
	return []application.RoomStatus{{Room: sampleRooms()[0], Occupant: &occupant}}, nil
}

func (o *occupancyStub) Dashboard(context.Context) (application.Dashboard, error) {
	return application.Dashboard{
		Context:      stubContext,
		TotalRooms:   2,
		TotalClasses: 1,
		OccupiedNow:  1,
		Utilisation:  []application.RoomUtilisation{{RoomID: "cc101", Name: "CC101", Entries: 1}, {RoomID: "cc201", Name: "CC201"}},
	}, nil
}

func (o *occupancyStub) RoomStatus(_ context.Context, roomID string) (application.RoomStatus, error) {
	room, err := roomStub{}.GetRoom(context.Background(), roomID)
	if err != nil {
		return application.RoomStatus{}, err
	}
	next := sampleEntry("s2", roomID)
	next.Start, next.End = scheduler.Clock(13, 0), scheduler.Clock(14, 30)
	return application.RoomStatus{Room: room, Next: &next}, nil
}

func (o *occupancyStub) NextUpcoming(_ context.Context, roomID string) (scheduler.Entry, bool, error) {
	if roomID != "cc101" {
		return scheduler.Entry{}, false, nil
	}
	next := sampleEntry("s2", roomID)
	next.Start, next.End = scheduler.Clock(13, 0), scheduler.Clock(14, 30)
	return next, true, nil
}

func (o *occupancyStub) lastQuery() *scheduler.TimeContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queried) == 0 {
		return nil
	}
	return o.queried[len(o.queried)-1]
}

type scheduleStub struct {
	mu        sync.Mutex
	addErr    error
	added     []application.AddClassParams
	booked    []application.BookMakeupParams
	removed   []string
	cancelled []string
	filter    application.ScheduleFilter
	timetable application.TimetableParams
}

func (s *scheduleStub) AddClass(_ context.Context, params application.AddClassParams) (scheduler.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return scheduler.Entry{}, s.addErr
	}
	s.added = append(s.added, params)
	entry := sampleEntry("new-class", params.Input.RoomID)
	entry.Subject = params.Input.Subject
	entry.Day = params.Input.Day
	entry.Start, entry.End = params.Input.Start, params.Input.End
	return entry, nil
}

func (s *scheduleStub) RemoveSchedule(_ context.Context, _ application.Principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
	return nil
}

func (s *scheduleStub) ListSchedule(_ context.Context, filter application.ScheduleFilter) ([]scheduler.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
	return []scheduler.Entry{sampleEntry("s1", "cc101")}, nil
}

func (s *scheduleStub) Sections(context.Context) ([]string, error) {
	return []string{"BSCS 1-A", "BSCS 2-B"}, nil
}

func (s *scheduleStub) Timetable(_ context.Context, params application.TimetableParams) ([]recurrence.Occurrence, error) {
	s.mu.Lock()
	s.timetable = params
	s.mu.Unlock()
	return []recurrence.Occurrence{{
		EntryID: "s1",
		RoomID:  "cc101",
		Subject: "Intro to Programming",
		Date:    params.From,
		Day:     params.From.Weekday(),
		Start:   scheduler.Clock(9, 0),
		End:     scheduler.Clock(10, 30),
	}}, nil
}

func (s *scheduleStub) BookMakeup(_ context.Context, params application.BookMakeupParams) (scheduler.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booked = append(s.booked, params)
	entry := scheduler.BuildMakeup("m1", scheduler.SingleDayCandidate{
		RoomID: params.Input.RoomID,
		Date:   params.Input.Date,
		Start:  params.Input.Start,
		End:    params.Input.End,
	}, scheduler.Details{Subject: params.Input.Subject, Section: params.Input.Section, Teacher: params.Principal.Name, BookedBy: params.Principal.UserID})
	return entry, nil
}

func (s *scheduleStub) MyBookings(_ context.Context, principal application.Principal) ([]scheduler.Entry, error) {
	entry := sampleEntry("m1", "cc201")
	entry.BookedBy = principal.UserID
	entry.Kind = scheduler.KindMakeup
	return []scheduler.Entry{entry}, nil
}

func (s *scheduleStub) CancelBooking(_ context.Context, _ application.Principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "someone-else" {
		return application.ErrUnauthorized
	}
	s.cancelled = append(s.cancelled, id)
	return nil
}

type userStub struct {
	users map[string]application.User
}

func (u *userStub) ListPending(context.Context, application.Principal) ([]application.User, error) {
	var pending []application.User
	for _, user := range u.users {
		if user.Status == application.StatusPending {
			pending = append(pending, user)
		}
	}
	return pending, nil
}

func (u *userStub) Approve(_ context.Context, _ application.Principal, id string) (application.User, error) {
	return u.decide(id, application.StatusApproved)
}

func (u *userStub) Reject(_ context.Context, _ application.Principal, id string) (application.User, error) {
	return u.decide(id, application.StatusRejected)
}

func (u *userStub) decide(id string, status application.AccountStatus) (application.User, error) {
	user, ok := u.users[id]
	if !ok {
		return application.User{}, application.ErrNotFound
	}
	if user.Status != application.StatusPending {
		return application.User{}, application.ErrInvalidTransition
	}
	user.Status = status
	u.users[id] = user
	return user, nil
}

type assistantStub struct{}

func (assistantStub) Configured() bool { return true }

func (assistantStub) Ask(_ context.Context, question string) string {
	return "You asked: " + question
}

type testServer struct {
	expect    *httpexpect.Expect
	auth      *authStub
	schedules *scheduleStub
	occupancy *occupancyStub
	users     *userStub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		auth:      &authStub{expires: time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)},
		schedules: &scheduleStub{},
		occupancy: &occupancyStub{},
		users: &userStub{users: map[string]application.User{
			"teacher-2": {ID: "teacher-2", Email: "jones@example.edu", Name: "Prof. Jones", Role: application.RoleTeacher, Status: application.StatusPending},
			"teacher-3": {ID: "teacher-3", Email: "lee@example.edu", Name: "Ms. Lee", Role: application.RoleTeacher, Status: application.StatusApproved},
		}},
	}

	router := NewRouter(RouterConfig{
		Auth:      NewAuthHandler(ts.auth, nil),
		Rooms:     NewRoomHandler(roomStub{}, ts.occupancy, "https://rooms.example.edu/", nil),
		Occupancy: NewOccupancyHandler(ts.occupancy, nil),
		Schedules: NewScheduleHandler(ts.schedules, nil),
		Bookings:  NewBookingHandler(ts.schedules, nil),
		Users:     NewUserHandler(ts.users, nil),
		Assistant: NewAssistantHandler(assistantStub{}, nil),
		Sessions:  sessionStub{},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ts.expect = httpexpect.Default(t, server.URL)
	return ts
}
