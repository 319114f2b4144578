package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/roomsync/internal/persistence"
	"github.com/example/roomsync/internal/persistence/memory"
	"github.com/example/roomsync/internal/persistence/sqlite"
	"github.com/example/roomsync/internal/persistence/sqlite/migration"
)

// NewSQLiteStore opens a migrated SQLite store in a temporary file. The store
// is closed when the test finishes.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "roomsync.db")
	store, err := sqlite.Open(context.Background(), migration.DefaultSQLiteConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		if err := store.Close(); err != nil {
			tb.Errorf("failed to close sqlite store: %v", err)
		}
	})
	return store
}

// StoreFactory builds a fresh, empty store for one test.
type StoreFactory func(tb testing.TB) persistence.Store

// Stores returns a factory for every persistence backend so repository
// contract tests can run against each of them.
func Stores() map[string]StoreFactory {
	return map[string]StoreFactory{
		"memory": func(testing.TB) persistence.Store { return memory.New() },
		"sqlite": func(tb testing.TB) persistence.Store { return NewSQLiteStore(tb) },
	}
}
