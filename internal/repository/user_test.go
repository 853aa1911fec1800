package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/model"
)

func newUser(name, createdAt string) *model.User {
	return &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash-" + name,
		CreatedAt:    createdAt,
	}
}

func TestUserCreate_AssignsID(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := newUser("alice", "2024-01-01T00:00:00.000000Z")
	second := newUser("bob", "2024-01-02T00:00:00.000000Z")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestUserCreate_DuplicateUsernameOrEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice", "t1")))

	sameName := newUser("alice", "t2")
	sameName.Email = "different@example.com"
	assert.ErrorIs(t, repo.Create(ctx, sameName), ErrDuplicateUser)

	sameEmail := newUser("alicia", "t3")
	sameEmail.Email = "alice@example.com"
	assert.ErrorIs(t, repo.Create(ctx, sameEmail), ErrDuplicateUser)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserCreate_ConcurrentDuplicatesSingleWinner(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser("racer", fmt.Sprintf("t%d", i))
			u.Email = fmt.Sprintf("racer%d@example.com", i)
			err := repo.Create(ctx, u)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateUser):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestUserFindByUsernameOrEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	alice := newUser("alice", "t1")
	require.NoError(t, repo.Create(ctx, alice))

	byName, err := repo.FindByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)
	assert.Equal(t, "hash-alice", byName.PasswordHash)

	byEmail, err := repo.FindByUsernameOrEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = repo.FindByUsernameOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserFindByUsernameOrEmail_UsernameWins(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	owner := newUser("carol", "t1")
	owner.Email = "mail@example.com"
	require.NoError(t, repo.Create(ctx, owner))

	squatter := newUser("mail@example.com", "t2")
	squatter.Email = "squatter@example.com"
	require.NoError(t, repo.Create(ctx, squatter))

	got, err := repo.FindByUsernameOrEmail(ctx, "mail@example.com")
	require.NoError(t, err)
	assert.Equal(t, squatter.ID, got.ID)
}

func TestUserGetByID(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := newUser("dave", "2024-03-03T00:00:00.000000Z")
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", got.Username)
	assert.Equal(t, "2024-03-03T00:00:00.000000Z", got.CreatedAt)
	assert.Nil(t, got.LastLogin)

	_, err = repo.GetByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserUpdateLastLogin(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := newUser("erin", "t1")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, "2025-05-05T05:05:05.000000Z"))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, "2025-05-05T05:05:05.000000Z", *got.LastLogin)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, 9999, "t"), ErrUserNotFound)
}

func TestUserList_NewestFirst(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	require.NoError(t, repo.Create(ctx, newUser("old", "2024-01-01T00:00:00.000000Z")))
	require.NoError(t, repo.Create(ctx, newUser("new", "2024-06-01T00:00:00.000000Z")))
	require.NoError(t, repo.Create(ctx, newUser("mid", "2024-03-01T00:00:00.000000Z")))

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{users[0].Username, users[1].Username, users[2].Username})
}

func newMockUserRepository(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewUserRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestUserCreate_MySQLDuplicateEntry(t *testing.T) {
	repo, mock := newMockUserRepository(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'uq_users_username'"})

	err := repo.Create(context.Background(), newUser("alice", "t1"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_StoreFailureIsWrapped(t *testing.T) {
	repo, mock := newMockUserRepository(t)
	storeErr := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO users").WillReturnError(storeErr)

	err := repo.Create(context.Background(), newUser("alice", "t1"))
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrDuplicateUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserList_StoreFailure(t *testing.T) {
	repo, mock := newMockUserRepository(t)

	mock.ExpectQuery("SELECT .* FROM users").WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
	assert.NoError(t, mock.ExpectationsWereMet())
}
