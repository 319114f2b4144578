package application

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/example/roomsync/internal/scheduler"
)

type entryRepoStub struct {
	mu        sync.Mutex
	entries   []scheduler.Entry
	err       error
	createErr error
}

func (s *entryRepoStub) CreateEntry(ctx context.Context, entry scheduler.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *entryRepoStub) GetEntry(ctx context.Context, id string) (scheduler.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return scheduler.Entry{}, s.err
	}
	for _, entry := range s.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return scheduler.Entry{}, ErrNotFound
}

func (s *entryRepoStub) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e scheduler.Entry) bool { return e.ID == id })
	if len(s.entries) == before {
		return ErrNotFound
	}
	return nil
}

func (s *entryRepoStub) ListEntries(ctx context.Context, filter EntryFilter) ([]scheduler.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]scheduler.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.RoomID != "" && entry.RoomID != filter.RoomID {
			continue
		}
		if filter.Day != nil && entry.Day != *filter.Day {
			continue
		}
		if filter.Section != "" && entry.Section != filter.Section {
			continue
		}
		if filter.BookedBy != "" && entry.BookedBy != filter.BookedBy {
			continue
		}
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *entryRepoStub) Entries(ctx context.Context) ([]scheduler.Entry, error) {
	return s.ListEntries(ctx, EntryFilter{})
}

func (s *entryRepoStub) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type roomRepoStub struct {
	rooms   []Room
	err     error
	listErr error
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room Room) error {
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.rooms {
		if existing.ID == room.ID {
			return ErrAlreadyExists
		}
	}
	r.rooms = append(r.rooms, room)
	return nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (Room, error) {
	if r.err != nil {
		return Room{}, r.err
	}
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return Room{}, ErrNotFound
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return slices.Clone(r.rooms), nil
}

func (r *roomRepoStub) RoomExists(ctx context.Context, id string) (bool, error) {
	if _, err := r.GetRoom(ctx, id); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type userRepoStub struct {
	users     []User
	err       error
	updateErr error
	updated   []User
}

func (u *userRepoStub) CreateUser(ctx context.Context, user User) error {
	if u.err != nil {
		return u.err
	}
	u.users = append(u.users, user)
	return nil
}

func (u *userRepoStub) UpdateUser(ctx context.Context, user User) error {
	if u.updateErr != nil {
		return u.updateErr
	}
	for i := range u.users {
		if u.users[i].ID == user.ID {
			u.users[i] = user
			u.updated = append(u.updated, user)
			return nil
		}
	}
	return ErrNotFound
}

func (u *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	for _, user := range u.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	for _, user := range u.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (u *userRepoStub) ListUsers(ctx context.Context) ([]User, error) {
	if u.err != nil {
		return nil, u.err
	}
	return slices.Clone(u.users), nil
}

// tokenStub encodes the principal into the token text so Parse can recover it.
type tokenStub struct {
	ttl    time.Duration
	issued map[string]Principal
	err    error
}

func newTokenStub() *tokenStub {
	return &tokenStub{ttl: time.Hour, issued: make(map[string]Principal)}
}

func (t *tokenStub) Issue(principal Principal, now time.Time) (string, time.Time, error) {
	if t.err != nil {
		return "", time.Time{}, t.err
	}
	token := fmt.Sprintf("token-%s-%d", principal.UserID, len(t.issued)+1)
	t.issued[token] = principal
	return token, now.Add(t.ttl), nil
}

func (t *tokenStub) Parse(token string, now time.Time) (Principal, error) {
	principal, ok := t.issued[token]
	if !ok {
		return Principal{}, fmt.Errorf("unknown token")
	}
	return principal, nil
}

type fixedTime struct {
	tc scheduler.TimeContext
}

func (f fixedTime) Current() scheduler.TimeContext { return f.tc }

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var (
	adminPrincipal   = Principal{UserID: AdminUserID, Name: "Administrator", Role: RoleAdmin}
	teacherPrincipal = Principal{UserID: "teacher-1", Name: "Dr. Smith", Email: "smith@example.com", Role: RoleTeacher}
	studentPrincipal = Principal{UserID: "student-1", Name: "Student", Role: RoleStudent}
)

func seededRooms() []Room {
	return []Room{
		{ID: "cc101", Name: "CC 101", Capacity: 45, Building: "Comscie Building"},
		{ID: "cc201", Name: "CC 201", Capacity: 40, Building: "Comscie Building"},
		{ID: "cc301", Name: "CC 301", Capacity: 30, Building: "Comscie Building"},
	}
}

func classEntry(id, roomID string, day scheduler.Weekday, start, end scheduler.ClockTime) scheduler.Entry {
	return scheduler.Entry{
		ID:        id,
		RoomID:    roomID,
		Subject:   "Subject " + id,
		Section:   "BSCS 1-A",
		Teacher:   "Teacher " + id,
		Day:       day,
		Start:     start,
		End:       end,
		StartDate: scheduler.NewDate(2025, 1, 1),
		EndDate:   scheduler.NewDate(2025, 12, 31),
		Kind:      scheduler.KindClass,
	}
}
