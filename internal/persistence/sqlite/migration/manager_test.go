package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
)

func TestManager_RunMigrations(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := Open(ctx, InMemorySQLiteConfig())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files := fstest.MapFS{
		"m/001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY);")},
		"m/002_seed.sql":  {Data: []byte("INSERT INTO rooms (id) VALUES ('cc101');\nINSERT INTO rooms (id) VALUES ('cc102');")},
	}
	executor := NewSQLiteExecutor(db)
	manager := NewManager(NewFSScanner(files, "m"), executor, logger)

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations returned error: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
		t.Fatalf("count rooms: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 seeded rooms, got %d", count)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Pending) != 0 || len(status.Applied) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}

	t.Run("second run is a no-op", func(t *testing.T) {
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations returned error: %v", err)
		}
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
			t.Fatalf("count rooms: %v", err)
		}
		if count != 2 {
			t.Fatalf("expected migrations to run once, got %d rooms", count)
		}
	})

	t.Run("edited migration is detected", func(t *testing.T) {
		edited := fstest.MapFS{
			"m/001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY, name TEXT);")},
			"m/002_seed.sql":  files["m/002_seed.sql"],
		}
		err := NewManager(NewFSScanner(edited, "m"), executor, logger).RunMigrations(ctx)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})
}

func TestManager_FailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, InMemorySQLiteConfig())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files := fstest.MapFS{
		"m/001_broken.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nINSERT INTO missing VALUES (1);")},
	}
	manager := NewManager(NewFSScanner(files, "m"), NewSQLiteExecutor(db), slog.New(slog.NewTextHandler(io.Discard, nil)))

	err = manager.RunMigrations(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'ok'").Scan(&name)
	if err == nil {
		t.Fatal("expected partial migration to be rolled back")
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if len(status.Applied) != 0 || len(status.Pending) != 1 {
		t.Fatalf("expected failed migration to remain pending, got %+v", status)
	}
}

func TestSQLiteConfig_Validate(t *testing.T) {
	cases := map[string]SQLiteConfig{
		"empty dsn":      {},
		"journal mode":   {DSN: "x.db", JournalMode: "FAST"},
		"synchronous":    {DSN: "x.db", Synchronous: "SOMETIMES"},
		"negative conns": {DSN: "x.db", MaxOpenConns: -1},
		"negative busy":  {DSN: "x.db", BusyTimeout: -1},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %+v", cfg)
			}
		})
	}

	if err := DefaultSQLiteConfig("data/roomsync.db").Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if got := connectionDSN(DefaultSQLiteConfig("data/roomsync.db")); got != "data/roomsync.db?_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)" {
		t.Fatalf("unexpected DSN %q", got)
	}
}
