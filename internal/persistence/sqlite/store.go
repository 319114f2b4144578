// Package sqlite persists RoomSync data in a SQLite database through the
// pure-Go modernc.org/sqlite driver. The schema is embedded and migrated on
// Open.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/roomsync/internal/persistence"
	"github.com/example/roomsync/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store is the SQLite implementation of persistence.Store.
type Store struct {
	pool      *ConnectionPool
	users     *UserRepository
	rooms     *RoomRepository
	schedules *ScheduleRepository
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database described by config and applies pending
// migrations.
func Open(ctx context.Context, config migration.SQLiteConfig, logger *slog.Logger) (*Store, error) {
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}

	store := &Store{
		pool:      pool,
		users:     NewUserRepository(pool),
		rooms:     NewRoomRepository(pool),
		schedules: NewScheduleRepository(pool),
	}
	if err := store.Migrate(ctx, logger); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return store, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewFSScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Users returns the user repository.
func (s *Store) Users() persistence.UserRepository { return s.users }

// Rooms returns the room repository.
func (s *Store) Rooms() persistence.RoomRepository { return s.rooms }

// Schedules returns the schedule repository.
func (s *Store) Schedules() persistence.ScheduleRepository { return s.schedules }

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
