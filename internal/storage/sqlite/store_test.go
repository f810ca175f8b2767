package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/smartshuttle/shuttle/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "shuttle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestStoreCloseNilSafe(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Close())
	assert.Error(t, store.Ping(context.Background()))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shuttle.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Ping(context.Background()))
	require.NoError(t, second.Close())

	require.NoError(t, Migrate(path))
}

func TestCreateAndGetUser(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateUser(ctx, storage.User{
		ID:           "user-1",
		Name:         "Ayşe Yılmaz",
		Email:        "  Ayse@Example.com ",
		PasswordHash: "hash",
		CreatedAt:    created,
	}))

	got, err := store.GetUserByEmail(ctx, "ayse@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "Ayşe Yılmaz", got.Name)
	assert.Equal(t, "ayse@example.com", got.Email)
	assert.Equal(t, storage.RolePassenger, got.Role)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, created, got.UpdatedAt)

	byID, err := store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestGetUserNotFound(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUserRequiresFields(t *testing.T) {
	store := openTempStore(t)

	assert.Error(t, store.CreateUser(context.Background(), storage.User{Email: "a@b.co"}))
	assert.Error(t, store.CreateUser(context.Background(), storage.User{ID: "x", Email: " "}))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, storage.User{ID: "u1", Name: "A", Email: "dup@example.com", PasswordHash: "h"}))
	err := store.CreateUser(ctx, storage.User{ID: "u2", Name: "B", Email: "DUP@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestCreateUserDuplicateIDIsNotEmailTaken(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, storage.User{ID: "u1", Name: "A", Email: "a@example.com", PasswordHash: "h"}))
	err := store.CreateUser(ctx, storage.User{ID: "u1", Name: "B", Email: "b@example.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrEmailTaken))
}

func TestConcurrentCreateSameEmailHasOneWinner(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.CreateUser(ctx, storage.User{
				ID:           string(rune('a' + i)),
				Name:         "Racer",
				Email:        "race@example.com",
				PasswordHash: "h",
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrEmailTaken)
	}
	assert.Equal(t, 1, wins)
}

func TestNotificationReads(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, storage.User{ID: "u1", Name: "A", Email: "a@example.com", PasswordHash: "h"}))

	read, err := store.ReadNotificationIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, read)

	require.NoError(t, store.MarkNotificationsRead(ctx, "u1", []string{"n1", "n2", " ", "n1"}))
	require.NoError(t, store.MarkNotificationsRead(ctx, "u1", []string{"n2", "n3"}))
	require.NoError(t, store.MarkNotificationsRead(ctx, "u1", nil))

	read, err = store.ReadNotificationIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"n1": true, "n2": true, "n3": true}, read)

	assert.Error(t, store.MarkNotificationsRead(ctx, "", []string{"n1"}))
}

func TestMarkNotificationsReadUnknownUser(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	err := store.MarkNotificationsRead(ctx, "ghost", []string{"n1"})
	require.ErrorIs(t, err, storage.ErrNotFound)

	read, err := store.ReadNotificationIDs(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, read)
}
