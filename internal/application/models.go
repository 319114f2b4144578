package application

import (
	"strings"
	"time"

	"github.com/example/roomsync/internal/scheduler"
)

// Role is the capability level of a principal.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// ParseRole resolves a role name, ignoring case.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return r, true
	}
	return "", false
}

// AccountStatus tracks a teacher's approval state.
type AccountStatus string

const (
	StatusPending  AccountStatus = "PENDING"
	StatusApproved AccountStatus = "APPROVED"
	StatusRejected AccountStatus = "REJECTED"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsTeacher reports whether the principal holds the teacher role.
func (p Principal) IsTeacher() bool { return p.Role == RoleTeacher }

// User is a registered teacher or student account.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room is a bookable room of the building.
type Room struct {
	ID       string
	Name     string
	Capacity int
	Building string
	Features []string
	Image    string
}

// Session is an issued access token together with the principal it encodes.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

// ClassInput captures the admin provided fields of a recurring class.
type ClassInput struct {
	RoomID    string
	Subject   string
	Section   string
	Teacher   string
	Day       scheduler.Weekday
	Start     scheduler.ClockTime
	End       scheduler.ClockTime
	StartDate scheduler.Date
	EndDate   scheduler.Date
}

// AddClassParams wraps the data required to add a recurring class.
type AddClassParams struct {
	Principal Principal
	Input     ClassInput
}

// MakeupInput captures the teacher provided fields of a single-day booking.
type MakeupInput struct {
	RoomID  string
	Subject string
	Section string
	Date    scheduler.Date
	Start   scheduler.ClockTime
	End     scheduler.ClockTime
}

// BookMakeupParams wraps the data required to book a makeup class.
type BookMakeupParams struct {
	Principal Principal
	Input     MakeupInput
}

// ScheduleFilter narrows schedule listings. Zero fields match everything.
type ScheduleFilter struct {
	RoomID  string
	Day     *scheduler.Weekday
	Section string
}

func (f ScheduleFilter) active() bool {
	return f.RoomID != "" || f.Day != nil || f.Section != ""
}

// TimetableParams selects the rooms and dates of a timetable expansion.
type TimetableParams struct {
	RoomID string
	From   scheduler.Date
	To     scheduler.Date
}

// RoomStatus is the live state of one room.
type RoomStatus struct {
	Room     Room
	Occupant *scheduler.Entry
	Next     *scheduler.Entry
}

// Free reports whether the room has no active occupant.
func (s RoomStatus) Free() bool { return s.Occupant == nil }

// OccupancySnapshot is the state of every room at one time context.
type OccupancySnapshot struct {
	Context scheduler.TimeContext
	Rooms   []RoomStatus
}

// RoomUtilisation counts the schedule entries held by one room.
type RoomUtilisation struct {
	RoomID  string
	Name    string
	Entries int
}

// Dashboard summarises the building for the landing page.
type Dashboard struct {
	Context      scheduler.TimeContext
	TotalRooms   int
	TotalClasses int
	OccupiedNow  int
	Utilisation  []RoomUtilisation
}

// LoginOutcome describes how a teacher login attempt was resolved.
type LoginOutcome string

const (
	LoginGranted    LoginOutcome = "granted"
	LoginPending    LoginOutcome = "pending"
	LoginRejected   LoginOutcome = "rejected"
	LoginRegistered LoginOutcome = "registered"
)

// Messages shown to teachers who cannot sign in yet.
const (
	MessagePendingApproval = "Your account is waiting for Admin approval. Please check back later."
	MessageRequestDeclined = "Your account request was declined by the Admin."
	MessageRequestSent     = "Request sent! Please wait for Admin approval to access the system."
	MessageInvalidPasskey  = "Invalid passkey. Please try again."
)

// TeacherLoginParams carries the identity a teacher signs in with.
type TeacherLoginParams struct {
	Email string
	Name  string
}

// TeacherLoginResult reports the outcome of a teacher login. Session is only
// populated when Outcome is LoginGranted.
type TeacherLoginResult struct {
	Outcome LoginOutcome
	Message string
	User    User
	Session Session
}
