// Package memory provides the default in-process store. Everything lives in
// maps guarded by one RWMutex and is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/example/roomsync/internal/persistence"
)

// Storage is an in-memory implementation of persistence.Store.
type Storage struct {
	mu sync.RWMutex

	users     map[string]persistence.User
	userOrder []string

	rooms     map[string]persistence.Room
	roomOrder []string

	schedules     map[string]persistence.ScheduleItem
	scheduleOrder []string
}

var _ persistence.Store = (*Storage)(nil)

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		users:     make(map[string]persistence.User),
		rooms:     make(map[string]persistence.Room),
		schedules: make(map[string]persistence.ScheduleItem),
	}
}

// Users returns the storage as a persistence.UserRepository.
func (s *Storage) Users() persistence.UserRepository { return s }

// Rooms returns the storage as a persistence.RoomRepository.
func (s *Storage) Rooms() persistence.RoomRepository { return s }

// Schedules returns the storage as a persistence.ScheduleRepository.
func (s *Storage) Schedules() persistence.ScheduleRepository { return s }

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user.
func (s *Storage) CreateUser(_ context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("memory: user %s: %w", user.ID, persistence.ErrDuplicate)
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	s.users[user.ID] = user
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

// UpdateUser replaces an existing user.
func (s *Storage) UpdateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(_ context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address, ignoring case.
func (s *Storage) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if strings.EqualFold(s.users[id].Email, email) {
			return s.users[id], nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users in registration order.
func (s *Storage) ListUsers(_ context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *Storage) ensureUniqueEmailLocked(id, email string) error {
	for existingID, user := range s.users {
		if existingID != id && strings.EqualFold(user.Email, email) {
			return fmt.Errorf("memory: email %s: %w", email, persistence.ErrDuplicate)
		}
	}
	return nil
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room.
func (s *Storage) CreateRoom(_ context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return fmt.Errorf("memory: room %s: %w", room.ID, persistence.ErrDuplicate)
	}

	s.rooms[room.ID] = cloneRoom(room)
	s.roomOrder = append(s.roomOrder, room.ID)
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Storage) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return cloneRoom(room), nil
}

// ListRooms returns all rooms in insertion order.
func (s *Storage) ListRooms(_ context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		rooms = append(rooms, cloneRoom(s.rooms[id]))
	}
	return rooms, nil
}

// --- ScheduleRepository implementation ---

// CreateSchedule appends a schedule entry.
func (s *Storage) CreateSchedule(_ context.Context, item persistence.ScheduleItem) error {
	if item.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[item.ID]; ok {
		return fmt.Errorf("memory: schedule %s: %w", item.ID, persistence.ErrDuplicate)
	}
	if _, ok := s.rooms[item.RoomID]; !ok {
		return fmt.Errorf("memory: room %s: %w", item.RoomID, persistence.ErrForeignKeyViolation)
	}

	s.schedules[item.ID] = item
	s.scheduleOrder = append(s.scheduleOrder, item.ID)
	return nil
}

// GetSchedule retrieves a schedule entry by ID.
func (s *Storage) GetSchedule(_ context.Context, id string) (persistence.ScheduleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.schedules[id]
	if !ok {
		return persistence.ScheduleItem{}, persistence.ErrNotFound
	}
	return item, nil
}

// ListSchedules returns matching entries in insertion order.
func (s *Storage) ListSchedules(_ context.Context, filter persistence.ScheduleFilter) ([]persistence.ScheduleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]persistence.ScheduleItem, 0, len(s.scheduleOrder))
	for _, id := range s.scheduleOrder {
		if item := s.schedules[id]; filter.Matches(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

// DeleteSchedule removes a schedule entry by ID.
func (s *Storage) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.schedules, id)
	s.scheduleOrder = slices.DeleteFunc(s.scheduleOrder, func(existing string) bool { return existing == id })
	return nil
}

func cloneRoom(room persistence.Room) persistence.Room {
	room.Features = slices.Clone(room.Features)
	return room
}
