package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Manager applies pending migrations in version order.
type Manager struct {
	scanner  Scanner
	executor Executor
	logger   *slog.Logger
}

// NewManager creates a Manager. A nil logger falls back to slog.Default.
func NewManager(scanner Scanner, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		logger:   logger.With(slog.String("component", "migration")),
	}
}

// RunMigrations executes every pending migration. Applied migrations whose
// file checksum changed abort the run before anything executes.
func (m *Manager) RunMigrations(ctx context.Context) error {
	started := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "migration status failed", slog.Any("error", err))
		return err
	}
	m.logger.InfoContext(ctx, "migration status",
		slog.String("current_version", status.CurrentVersion),
		slog.Int("applied", len(status.Applied)),
		slog.Int("pending", len(status.Pending)),
	)
	if len(status.Pending) == 0 {
		return nil
	}

	for i, migration := range status.Pending {
		migrationStarted := time.Now()
		m.logger.InfoContext(ctx, "executing migration",
			slog.String("version", migration.Version),
			slog.String("description", migration.Description),
			slog.Int("position", i+1),
			slog.Int("total", len(status.Pending)),
		)

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				slog.String("version", migration.Version),
				slog.String("file", migration.FilePath),
				slog.Any("error", err),
			)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStarted)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			return NewMigrationError(migration.Version, migration.FilePath, "record migration", err)
		}
		m.logger.InfoContext(ctx, "migration applied",
			slog.String("version", migration.Version),
			slog.Duration("duration", elapsed),
		)
	}

	m.logger.InfoContext(ctx, "migrations complete",
		slog.Int("count", len(status.Pending)),
		slog.Duration("duration", time.Since(started)),
	)
	return nil
}

// Status compares the migration source with the schema_migrations table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, fmt.Errorf("failed to initialize version table: %w", err)
	}

	available, err := m.scanner.ScanMigrations()
	if err != nil {
		return Status{}, fmt.Errorf("failed to scan migrations: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get applied versions: %w", err)
	}

	byVersion := make(map[int]Migration, len(available))
	for _, migration := range available {
		number, _ := strconv.Atoi(migration.Version)
		byVersion[number] = migration
	}

	status := Status{Applied: applied}
	appliedSet := make(map[int]bool, len(applied))
	for _, record := range applied {
		number, err := strconv.Atoi(record.Version)
		if err != nil {
			return Status{}, fmt.Errorf("%w: applied version %q", ErrInvalidVersion, record.Version)
		}
		appliedSet[number] = true
		status.CurrentVersion = record.Version

		source, ok := byVersion[number]
		if !ok {
			m.logger.WarnContext(ctx, "applied migration has no source file", slog.String("version", record.Version))
			continue
		}
		if record.Checksum != "" && record.Checksum != source.Checksum {
			return Status{}, NewMigrationError(record.Version, source.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}

	for _, migration := range available {
		number, _ := strconv.Atoi(migration.Version)
		if !appliedSet[number] {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}
