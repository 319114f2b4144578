package persistence

import "time"

// User is a dashboard account. Admins authenticate with the passkey and are
// not stored; teachers and students are.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room is a bookable room of the building.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Building  string
	Features  []string
	Image     string
	CreatedAt time.Time
}

// ScheduleItem is a stored schedule entry. Days, times and dates are kept in
// their text forms ("Monday", "09:00", "2025-01-31").
type ScheduleItem struct {
	ID        string
	RoomID    string
	Subject   string
	Section   string
	Teacher   string
	Day       string
	StartTime string
	EndTime   string
	StartDate string
	EndDate   string
	Color     string
	Kind      string
	BookedBy  string
	CreatedAt time.Time
}
