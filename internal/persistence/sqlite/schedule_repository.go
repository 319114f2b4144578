package sqlite

import (
	"context"
	"strings"

	"github.com/example/roomsync/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	pool  *ConnectionPool
	retry *RetryHelper
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
	}
}

const scheduleColumns = `id, room_id, subject, section, teacher, day, start_time, end_time, start_date, end_date, color, kind, booked_by, created_at`

// CreateSchedule appends a schedule entry.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, item persistence.ScheduleItem) error {
	if item.ID == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO schedules (seq, ` + scheduleColumns + `)
		VALUES ((SELECT COALESCE(MAX(seq), 0) + 1 FROM schedules), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			item.ID,
			item.RoomID,
			item.Subject,
			item.Section,
			item.Teacher,
			item.Day,
			item.StartTime,
			item.EndTime,
			item.StartDate,
			item.EndDate,
			item.Color,
			item.Kind,
			item.BookedBy,
			formatTimestamp(item.CreatedAt),
		)
		return err
	})
}

// GetSchedule retrieves a schedule entry by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.ScheduleItem, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	return scanSchedule(row)
}

// ListSchedules returns matching entries in insertion order.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.ScheduleItem, error) {
	var (
		conditions []string
		args       []any
	)
	for _, clause := range []struct {
		column string
		value  string
	}{
		{"room_id", filter.RoomID},
		{"day", filter.Day},
		{"section", filter.Section},
		{"booked_by", filter.BookedBy},
		{"kind", filter.Kind},
	} {
		if clause.value != "" {
			conditions = append(conditions, clause.column+" = ?")
			args = append(args, clause.value)
		}
	}

	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY seq ASC`

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	items := make([]persistence.ScheduleItem, 0)
	for rows.Next() {
		item, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// DeleteSchedule removes a schedule entry by ID.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func scanSchedule(row rowScanner) (persistence.ScheduleItem, error) {
	var (
		item      persistence.ScheduleItem
		createdAt string
	)
	if err := row.Scan(
		&item.ID,
		&item.RoomID,
		&item.Subject,
		&item.Section,
		&item.Teacher,
		&item.Day,
		&item.StartTime,
		&item.EndTime,
		&item.StartDate,
		&item.EndDate,
		&item.Color,
		&item.Kind,
		&item.BookedBy,
		&createdAt,
	); err != nil {
		return persistence.ScheduleItem{}, MapError(err)
	}
	var err error
	if item.CreatedAt, err = parseTimestamp("schedules.created_at", createdAt); err != nil {
		return persistence.ScheduleItem{}, err
	}
	return item, nil
}
