package sqlite

import (
	"context"
	"strings"

	"github.com/example/roomsync/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool  *ConnectionPool
	retry *RetryHelper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
	}
}

const userColumns = `id, email, name, role, status, created_at, updated_at`

// CreateUser inserts a new user. Emails are unique regardless of case.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO users (seq, ` + userColumns + `)
		VALUES ((SELECT COALESCE(MAX(seq), 0) + 1 FROM users), ?, ?, ?, ?, ?, ?, ?)`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			user.ID,
			strings.TrimSpace(user.Email),
			user.Name,
			user.Role,
			user.Status,
			formatTimestamp(user.CreatedAt),
			formatTimestamp(user.UpdatedAt),
		)
		return err
	})
}

// UpdateUser replaces the mutable fields of an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	const query = `
		UPDATE users
		SET email = ?, name = ?, role = ?, status = ?, updated_at = ?
		WHERE id = ?`

	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, query,
			strings.TrimSpace(user.Email),
			user.Name,
			user.Role,
			user.Status,
			formatTimestamp(user.UpdatedAt),
			user.ID,
		)
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

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address, ignoring case.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email))
	return scanUser(row)
}

// ListUsers returns all users in registration order.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq ASC`)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return users, nil
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Status, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, MapError(err)
	}
	var err error
	if user.CreatedAt, err = parseTimestamp("users.created_at", createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTimestamp("users.updated_at", updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
