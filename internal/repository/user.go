package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/taskhub/taskhub/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already exists")
)

const userColumns = `id, username, email, password_hash, created_at, last_login`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
// Uniqueness of username and email is enforced by the table's unique indexes,
// so two concurrent inserts of the same name cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	const query = `INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	return nil
}

// FindByUsernameOrEmail retrieves the user whose username equals value or
// whose email equals value lower-cased. A username match wins over an email match.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, value string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE username = ? OR email = ?
		ORDER BY CASE WHEN username = ? THEN 0 ELSE 1 END
		LIMIT 1`

	user := &model.User{}
	err := r.db.GetContext(ctx, user, query, value, strings.ToLower(value), value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user := &model.User{}
	if err := r.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// UpdateLastLogin stamps the last successful login of a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at string) error {
	const query = `UPDATE users SET last_login = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// List retrieves every user, newest first.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}
