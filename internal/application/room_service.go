package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/example/roomsync/internal/persistence"
)

// RoomService exposes the room catalog.
type RoomService struct {
	rooms  RoomRepository
	logger *slog.Logger
}

// NewRoomService constructs a room service with the provided repository.
func NewRoomService(rooms RoomRepository) *RoomService {
	return NewRoomServiceWithLogger(rooms, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// SeedRooms validates and stores the fixed room catalog. Features are
// normalised to a sorted set. Rooms that already exist are skipped so a
// durable store can be reseeded on every start.
func (s *RoomService) SeedRooms(ctx context.Context, rooms []Room) (created int, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SeedRooms", "rooms", len(rooms))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "rooms seeded", "created", created)
	}()

	for _, room := range rooms {
		if vErr := validateRoom(room); vErr.HasErrors() {
			err = vErr
			return
		}
		room.ID = strings.TrimSpace(room.ID)
		room.Name = strings.TrimSpace(room.Name)
		room.Features = normalizeFeatures(room.Features)

		if cErr := s.rooms.CreateRoom(ctx, room); cErr != nil {
			if mapped := mapRepoError(cErr); errors.Is(mapped, ErrAlreadyExists) {
				continue
			}
			err = mapRepoError(cErr)
			return
		}
		created++
	}
	return
}

// ListRooms returns the catalog in insertion order.
func (s *RoomService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rooms, nil
}

// GetRoom returns a room by identifier.
func (s *RoomService) GetRoom(ctx context.Context, id string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Room{}, ErrNotFound
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRepoError(err)
	}
	return room, nil
}

// RoomExists reports whether a room with the identifier is in the catalog.
func (s *RoomService) RoomExists(ctx context.Context, id string) (bool, error) {
	if _, err := s.GetRoom(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validateRoom(room Room) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(room.ID) == "" {
		vErr.add("id", "id is required")
	}
	if strings.TrimSpace(room.Name) == "" {
		vErr.add("name", "name is required")
	}
	if room.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	return vErr
}

func normalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, feature := range features {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return newValidationError("room_id", "room does not exist")
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("record", "record violates a storage constraint")
	}
	return err
}
