package persistence

import "context"

// UserRepository stores teacher and student accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// RoomRepository stores the room catalog. Rooms are listed in insertion order.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// ScheduleFilter narrows schedule queries. Empty fields match everything.
type ScheduleFilter struct {
	RoomID   string
	Day      string
	Section  string
	BookedBy string
	Kind     string
}

// Matches reports whether item satisfies every populated field.
func (f ScheduleFilter) Matches(item ScheduleItem) bool {
	switch {
	case f.RoomID != "" && item.RoomID != f.RoomID:
		return false
	case f.Day != "" && item.Day != f.Day:
		return false
	case f.Section != "" && item.Section != f.Section:
		return false
	case f.BookedBy != "" && item.BookedBy != f.BookedBy:
		return false
	case f.Kind != "" && item.Kind != f.Kind:
		return false
	}
	return true
}

// ScheduleRepository stores schedule entries. Entries are listed in insertion
// order, which callers rely on for tie-breaking.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, item ScheduleItem) error
	GetSchedule(ctx context.Context, id string) (ScheduleItem, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]ScheduleItem, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// Store bundles the repositories of one backend.
type Store interface {
	Users() UserRepository
	Rooms() RoomRepository
	Schedules() ScheduleRepository
	Close() error
}
