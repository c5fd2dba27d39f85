package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementation ---

type mockUserRepo struct {
	byUsername map[string]*User
	createErr  error
}

func newMockUserRepo(users ...*User) *mockUserRepo {
	byUsername := make(map[string]*User, len(users))
	for _, u := range users {
		byUsername[u.Username] = u
	}
	return &mockUserRepo{byUsername: byUsername}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byUsername[u.Username]; ok {
		return ErrUsernameTaken
	}
	m.byUsername[u.Username] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range m.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func newTestService(users ...*User) (*Service, *mockUserRepo) {
	repo := newMockUserRepo(users...)
	return NewService(repo, testIssuer(time.Hour)), repo
}

// --- Tests ---

func TestRegister_CreatesAccountAndLogsIn(t *testing.T) {
	svc, repo := newTestService()

	u, token, err := svc.Register(context.Background(), "alice", "alice@example.com", "correct horse")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.Staff)
	assert.NotEqual(t, "correct horse", u.PasswordHash, "password must be stored hashed")
	require.NotEmpty(t, token)

	stored, ok := repo.byUsername["alice"]
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Register(context.Background(), "  ", "", "long enough pw")
	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)

	_, _, err = svc.Register(context.Background(), "bob", "", "short")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(&User{ID: "u1", Username: "alice"})

	_, _, err := svc.Register(context.Background(), "alice", "", "long enough pw")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_Succeeds(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekret-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	svc, _ := newTestService(&User{ID: "u1", Username: "alice", PasswordHash: string(hash)})

	u, token, err := svc.Login(context.Background(), "alice", "sekret-pw")

	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekret-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	svc, _ := newTestService(&User{ID: "u1", Username: "alice", PasswordHash: string(hash)})

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Register(context.Background(), "carol", "c@example.com", "long enough pw")
	require.NoError(t, err)

	u, _, err := svc.Login(context.Background(), "carol", "long enough pw")
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)
}
