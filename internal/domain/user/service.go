package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// InvalidFieldError indicates a malformed registration field.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

const minPasswordLen = 8

// Service encapsulates registration and login.
type Service struct {
	users  Repository
	tokens *TokenIssuer
}

// NewService creates a user Service with the required dependencies.
func NewService(users Repository, tokens *TokenIssuer) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// Register creates an account and returns it together with a session token,
// so a fresh registration is immediately logged in.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", &InvalidFieldError{Field: "username", Reason: "must not be empty"}
	}
	if len(password) < minPasswordLen {
		return nil, "", &InvalidFieldError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", minPasswordLen),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", errors.Wrap(err, "create user")
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}
	return u, token, nil
}

// Login verifies the password and returns the user with a fresh session
// token. Unknown usernames and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, "get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}
	return u, token, nil
}
