package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/crypto"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/repository"
)

var cheapHashParams = crypto.HashParams{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	ctx := context.Background()

	db, err := repository.NewDB(ctx, repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.EnsureSchema(ctx, db, repository.DriverSQLite, repository.UsersTable))

	return NewUserService(repository.NewUserRepository(db), crypto.NewHasher(cheapHashParams))
}

func register(t *testing.T, svc *UserService, username, email, password string) model.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: strPtr(username),
		Email:    strPtr(email),
		Password: strPtr(password),
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_ProfileRoundTrip(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	resp := register(t, svc, "  alice ", " Alice@Example.com ", "secret1")
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	profile, err := svc.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.NotEmpty(t, profile.CreatedAt)
	assert.Nil(t, profile.LastLogin)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	register(t, svc, "alice", "alice@example.com", "secret1")

	_, err := svc.Register(ctx, model.RegisterRequest{
		Username: strPtr("alice"),
		Email:    strPtr("other@example.com"),
		Password: strPtr("secret1"),
	})
	assert.ErrorIs(t, err, ErrUserExists)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegister_ValidationDoesNotHash(t *testing.T) {
	hasher := &countingHasher{}
	svc := NewUserService(&stubUserStore{}, hasher)

	_, err := svc.Register(context.Background(), model.RegisterRequest{Username: strPtr("al")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, hasher.calls)
}

func TestLogin(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	created := register(t, svc, "bob", "bob@example.com", "hunter22")

	_, err := svc.Login(ctx, model.LoginRequest{Username: strPtr("bob"), Password: strPtr("wrong-pass")})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Username: strPtr("nobody"), Password: strPtr("hunter22")})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	before := model.FormatTime(time.Now())
	resp, err := svc.Login(ctx, model.LoginRequest{Username: strPtr("bob"), Password: strPtr("hunter22")})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, created.User, resp.User)

	profile, err := svc.GetProfile(ctx, created.User.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.LastLogin)
	assert.GreaterOrEqual(t, *profile.LastLogin, before)
}

func TestLogin_ByEmail(t *testing.T) {
	svc := newTestUserService(t)

	register(t, svc, "carol", "carol@example.com", "secret1")

	resp, err := svc.Login(context.Background(), model.LoginRequest{
		Username: strPtr("Carol@Example.com"),
		Password: strPtr("secret1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", resp.User.Username)
}

func TestLogin_UsesInjectedClock(t *testing.T) {
	svc := newTestUserService(t)
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	created := register(t, svc, "dave", "dave@example.com", "secret1")
	_, err := svc.Login(context.Background(), model.LoginRequest{Username: strPtr("dave"), Password: strPtr("secret1")})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FormatTime(fixed), profile.CreatedAt)
	assert.Equal(t, model.FormatTime(fixed), *profile.LastLogin)
}

func TestLogin_CorruptHashIsInternal(t *testing.T) {
	store := &stubUserStore{user: &model.User{ID: 7, Username: "eve", PasswordHash: "not-a-phc-string"}}
	svc := NewUserService(store, crypto.NewHasher(cheapHashParams))

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: strPtr("eve"), Password: strPtr("secret1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrInvalidHashFormat)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := newTestUserService(t)
	_, err := svc.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers_NewestFirst(t *testing.T) {
	svc := newTestUserService(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		register(t, svc, name, name+"@example.com", "secret1")
	}

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "third", users[0].Username)
	assert.Equal(t, "first", users[2].Username)
}

func TestListUsers_StoreError(t *testing.T) {
	storeErr := errors.New("boom")
	svc := NewUserService(&stubUserStore{err: storeErr}, crypto.NewHasher(cheapHashParams))

	_, err := svc.ListUsers(context.Background())
	assert.ErrorIs(t, err, storeErr)
}

type countingHasher struct {
	calls int
}

func (h *countingHasher) Hash(string) (string, error) {
	h.calls++
	return "hash", nil
}

func (h *countingHasher) Verify(string, string) (bool, error) {
	h.calls++
	return true, nil
}

type stubUserStore struct {
	user *model.User
	err  error
}

func (s *stubUserStore) Create(context.Context, *model.User) error { return s.err }

func (s *stubUserStore) FindByUsernameOrEmail(context.Context, string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil {
		return nil, repository.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubUserStore) GetByID(context.Context, int64) (*model.User, error) {
	return s.FindByUsernameOrEmail(context.Background(), "")
}

func (s *stubUserStore) UpdateLastLogin(context.Context, int64, string) error { return s.err }

func (s *stubUserStore) List(context.Context) ([]model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.User{}, nil
}
