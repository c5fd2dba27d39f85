package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfloor/storefront/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const createUserSQL = `INSERT INTO users (id, username, email, password_hash, is_staff)
	VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

// Create inserts a new user. A username collision maps to user.ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, createUserSQL,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Staff,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, is_staff, created_at`

// GetByID returns a user by identifier, or user.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername returns a user by username, or user.ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*user.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column)

	var u user.User
	err := r.pool.QueryRow(ctx, sql, value).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Staff, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user by %s %q: %w", column, value, err)
	}
	return &u, nil
}
