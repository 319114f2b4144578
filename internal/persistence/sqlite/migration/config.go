package migration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteConfig holds SQLite-specific database configuration.
type SQLiteConfig struct {
	DSN               string
	BusyTimeout       time.Duration
	EnableForeignKeys bool
	JournalMode       string
	Synchronous       string
	CacheSize         int
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
}

// DefaultSQLiteConfig returns a file-backed configuration tuned for a single
// service process.
func DefaultSQLiteConfig(databasePath string) SQLiteConfig {
	return SQLiteConfig{
		DSN:               databasePath,
		BusyTimeout:       30 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "NORMAL",
		CacheSize:         -2000,
		MaxOpenConns:      4,
		MaxIdleConns:      2,
		ConnMaxLifetime:   5 * time.Minute,
	}
}

// InMemorySQLiteConfig returns a configuration for a throwaway in-memory
// database. A single connection is used because every connection to
// ":memory:" would otherwise see its own empty database.
func InMemorySQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		DSN:               MemoryDSN,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		CacheSize:         -1000,
		MaxOpenConns:      1,
		MaxIdleConns:      1,
	}
}

// Validate reports configuration values SQLite would reject.
func (c SQLiteConfig) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}
	switch c.JournalMode {
	case "", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF":
	default:
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	switch c.Synchronous {
	case "", "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("connection limits cannot be negative")
	}
	if c.ConnMaxLifetime < 0 {
		return fmt.Errorf("ConnMaxLifetime cannot be negative")
	}
	return nil
}

// Open validates the configuration, creates the database directory when
// needed and returns a configured connection pool.
func Open(ctx context.Context, config SQLiteConfig) (*sql.DB, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite configuration: %w", err)
	}
	if err := ensureDirectory(config.DSN); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", connectionDSN(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := applyPragmas(ctx, db, config); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure SQLite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, config SQLiteConfig) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeout.Milliseconds()),
	}
	if config.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = "+config.JournalMode)
	}
	if config.Synchronous != "" {
		pragmas = append(pragmas, "PRAGMA synchronous = "+config.Synchronous)
	}
	if config.EnableForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	if config.CacheSize != 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA cache_size = %d", config.CacheSize))
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// connectionDSN adds the per-connection pragmas as modernc "_pragma" query
// parameters so that every pooled connection gets them, not only the first.
func connectionDSN(config SQLiteConfig) string {
	if config.DSN == MemoryDSN || strings.Contains(config.DSN, "_pragma=") {
		return config.DSN
	}
	params := []string{fmt.Sprintf("_pragma=busy_timeout(%d)", config.BusyTimeout.Milliseconds())}
	if config.EnableForeignKeys {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	sep := "?"
	if strings.Contains(config.DSN, "?") {
		sep = "&"
	}
	return config.DSN + sep + strings.Join(params, "&")
}

func ensureDirectory(dsn string) error {
	if dsn == MemoryDSN || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path, _, _ := strings.Cut(dsn, "?")
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
