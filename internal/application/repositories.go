package application

import (
	"context"

	"github.com/example/roomsync/internal/scheduler"
)

// EntryFilter narrows queries issued to the schedule repository.
type EntryFilter struct {
	RoomID   string
	Day      *scheduler.Weekday
	Section  string
	BookedBy string
	Kind     scheduler.Kind
}

// ScheduleRepository captures the persistence interactions needed by the
// schedule service. ListEntries returns entries in insertion order.
type ScheduleRepository interface {
	CreateEntry(ctx context.Context, entry scheduler.Entry) error
	GetEntry(ctx context.Context, id string) (scheduler.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, filter EntryFilter) ([]scheduler.Entry, error)
}

// RoomRepository exposes the room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// UserRepository stores teacher and student accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
}

// RoomLister lists the room catalog.
type RoomLister interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// EntrySource returns a snapshot of every schedule entry.
type EntrySource interface {
	Entries(ctx context.Context) ([]scheduler.Entry, error)
}

// TimeSource yields the cached current time context.
type TimeSource interface {
	Current() scheduler.TimeContext
}
