// Package user implements accounts, password authentication, and the signed
// session tokens that identify a user on every storefront operation.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for account operations.
var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering an already-used username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned on a failed login. It never reveals
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when an operation requires a resolved
	// user identity and none is present or the token is invalid.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// User is a storefront account. Staff users may manage any catalog product;
// regular users only the ones they created.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Staff        bool
	CreatedAt    time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create inserts a new user. Returns ErrUsernameTaken on a username
	// uniqueness violation.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
