package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/persistence"
	"github.com/example/roomsync/internal/scheduler"
)

var (
	userCounter  uint64
	roomCounter  uint64
	entryCounter uint64
)

// referenceTime is a Monday morning during the spring term.
var referenceTime = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate is the calendar date of ReferenceTime.
func ReferenceDate() scheduler.Date {
	return scheduler.DateOf(referenceTime)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic teacher or student account.
type UserFixture struct {
	ID        string
	Email     string
	Name      string
	Role      application.Role
	Status    application.AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns an approved teacher with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.edu", id),
		Name:      fmt.Sprintf("Teacher %03d", idx),
		Role:      application.RoleTeacher,
		Status:    application.StatusApproved,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserRole sets the role of the fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserStatus sets the approval status of the fixture.
func WithUserStatus(status application.AccountStatus) UserOption {
	return func(f *UserFixture) {
		f.Status = status
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Email:     f.Email,
		Name:      f.Name,
		Role:      f.Role,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Name: f.Name, Email: f.Email, Role: f.Role}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:        f.ID,
		Email:     f.Email,
		Name:      f.Name,
		Role:      string(f.Role),
		Status:    string(f.Status),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room of the building.
type RoomFixture struct {
	ID        string
	Name      string
	Capacity  int
	Building  string
	Features  []string
	Image     string
	CreatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  int(30 + idx%4*5),
		Building:  "Comscie Building",
		Features:  []string{"AC", "Whiteboard"},
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomFeatures replaces the feature list.
func WithRoomFeatures(features ...string) RoomOption {
	return func(f *RoomFixture) {
		f.Features = append([]string(nil), features...)
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:       f.ID,
		Name:     f.Name,
		Capacity: f.Capacity,
		Building: f.Building,
		Features: append([]string(nil), f.Features...),
		Image:    f.Image,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Building:  f.Building,
		Features:  append([]string(nil), f.Features...),
		Image:     f.Image,
		CreatedAt: f.CreatedAt,
	}
}

// ---------------------------- Entry fixtures -----------------------------

// EntryFixture represents a deterministic schedule entry. By default it is a
// Monday 09:00-10:30 class valid for the whole of 2025.
type EntryFixture struct {
	scheduler.Entry
	CreatedAt time.Time
}

// EntryOption configures the generated entry fixture.
type EntryOption func(*EntryFixture)

// NewEntryFixture returns a deterministic entry fixture with optional overrides.
func NewEntryFixture(opts ...EntryOption) EntryFixture {
	idx := atomic.AddUint64(&entryCounter, 1)
	fixture := EntryFixture{
		Entry: scheduler.Entry{
			ID:        fmt.Sprintf("entry-%03d", idx),
			RoomID:    "cc101",
			Subject:   fmt.Sprintf("Subject %03d", idx),
			Section:   "BSCS 1-A",
			Teacher:   "Dr. Smith",
			Day:       scheduler.Monday,
			Start:     scheduler.Clock(9, 0),
			End:       scheduler.Clock(10, 30),
			StartDate: scheduler.NewDate(2025, time.January, 1),
			EndDate:   scheduler.NewDate(2025, time.December, 31),
			Color:     scheduler.ClassPalette[int(idx)%len(scheduler.ClassPalette)],
			Kind:      scheduler.KindClass,
		},
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEntryID overrides the generated entry ID.
func WithEntryID(id string) EntryOption {
	return func(f *EntryFixture) {
		f.ID = id
	}
}

// WithEntryRoom sets the room the entry occupies.
func WithEntryRoom(roomID string) EntryOption {
	return func(f *EntryFixture) {
		f.RoomID = roomID
	}
}

// WithEntrySlot sets the weekday and time range.
func WithEntrySlot(day scheduler.Weekday, start, end scheduler.ClockTime) EntryOption {
	return func(f *EntryFixture) {
		f.Day = day
		f.Start = start
		f.End = end
	}
}

// WithEntryValidity sets the inclusive date range.
func WithEntryValidity(from, to scheduler.Date) EntryOption {
	return func(f *EntryFixture) {
		f.StartDate = from
		f.EndDate = to
	}
}

// WithEntrySection overrides the section label.
func WithEntrySection(section string) EntryOption {
	return func(f *EntryFixture) {
		f.Section = section
	}
}

// AsMakeup turns the fixture into a single-day booking on date by userID.
func AsMakeup(date scheduler.Date, userID string) EntryOption {
	return func(f *EntryFixture) {
		f.Day = date.Weekday()
		f.StartDate = date
		f.EndDate = date
		f.Kind = scheduler.KindMakeup
		f.Color = scheduler.MakeupColor
		f.BookedBy = userID
		f.Subject += scheduler.MakeupSuffix
	}
}

// Persistence returns the fixture as a persistence.ScheduleItem value.
func (f EntryFixture) Persistence() persistence.ScheduleItem {
	return persistence.ScheduleItem{
		ID:        f.ID,
		RoomID:    f.RoomID,
		Subject:   f.Subject,
		Section:   f.Section,
		Teacher:   f.Teacher,
		Day:       f.Day.String(),
		StartTime: f.Start.String(),
		EndTime:   f.End.String(),
		StartDate: f.StartDate.String(),
		EndDate:   f.EndDate.String(),
		Color:     f.Color,
		Kind:      string(f.Kind),
		BookedBy:  f.BookedBy,
		CreatedAt: f.CreatedAt,
	}
}
