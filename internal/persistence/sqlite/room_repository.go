package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/roomsync/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool  *ConnectionPool
	retry *RetryHelper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateRoom inserts a room together with its ordered feature list.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			const insertRoom = `
				INSERT INTO rooms (id, seq, name, capacity, building, image, created_at)
				VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM rooms), ?, ?, ?, ?, ?)`
			if _, err := tx.ExecContext(ctx, insertRoom,
				room.ID,
				room.Name,
				room.Capacity,
				room.Building,
				room.Image,
				formatTimestamp(room.CreatedAt),
			); err != nil {
				return MapError(err)
			}

			const insertFeature = `INSERT INTO room_features (room_id, position, feature) VALUES (?, ?, ?)`
			for i, feature := range room.Features {
				if _, err := tx.ExecContext(ctx, insertFeature, room.ID, i, feature); err != nil {
					return MapError(err)
				}
			}
			return nil
		})
	})
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	const query = `
		SELECT id, name, capacity, building, image, created_at
		FROM rooms
		WHERE id = ?`

	room, err := scanRoom(r.pool.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Room{}, err
	}

	features, err := r.loadFeatures(ctx, room.ID)
	if err != nil {
		return persistence.Room{}, err
	}
	room.Features = features[room.ID]
	return room, nil
}

// ListRooms returns every room in insertion order.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	const query = `
		SELECT id, name, capacity, building, image, created_at
		FROM rooms
		ORDER BY seq ASC`

	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	features, err := r.loadFeatures(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Features = features[rooms[i].ID]
	}
	return rooms, nil
}

// loadFeatures returns features keyed by room. An empty roomID loads all rooms.
func (r *RoomRepository) loadFeatures(ctx context.Context, roomID string) (map[string][]string, error) {
	const query = `
		SELECT room_id, feature
		FROM room_features
		WHERE ? = '' OR room_id = ?
		ORDER BY room_id, position`
	rows, err := r.pool.DB().QueryContext(ctx, query, roomID, roomID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	features := make(map[string][]string)
	for rows.Next() {
		var roomID, feature string
		if err := rows.Scan(&roomID, &feature); err != nil {
			return nil, MapError(err)
		}
		features[roomID] = append(features[roomID], feature)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return features, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room      persistence.Room
		createdAt string
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Capacity, &room.Building, &room.Image, &createdAt); err != nil {
		return persistence.Room{}, MapError(err)
	}
	var err error
	if room.CreatedAt, err = parseTimestamp("rooms.created_at", createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("room %s: %w", room.ID, err)
	}
	return room, nil
}
