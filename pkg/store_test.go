package loadstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *StatusStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStatusStore(client, zap.NewNop())
}

func sampleChange(name string) StateChange {
	return StateChange{
		Name:    name,
		Loading: true,
		At:      time.Now().UTC(),
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveChange(ctx, StateChange{
		Name: "login",
		Err:  errors.New("bad credentials"),
		At:   time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = uuid.Parse(saved.UpdateID)
	assert.NoError(t, err, "update ID should be a uuid")

	rec, err := store.GetStatus(ctx, "login")
	require.NoError(t, err)
	assert.Equal(t, saved.UpdateID, rec.UpdateID)
	assert.Equal(t, "login", rec.Name)
	assert.Equal(t, "bad credentials", rec.Error)
	assert.False(t, rec.Loading)
}

func TestStoreGetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetStatus(context.Background(), "never-saved")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestStoreListStatuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names := []string{"login", "register", "save-profile"}
	for _, name := range names {
		_, err := store.SaveChange(ctx, sampleChange(name))
		require.NoError(t, err)
	}

	records, err := store.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(names))

	seen := make(map[string]bool)
	for _, rec := range records {
		seen[rec.Name] = true
	}
	for _, name := range names {
		assert.True(t, seen[name], name)
	}
}

func TestStoreRecentUpdatesOrderAndCap(t *testing.T) {
	store := newTestStore(t)
	store.RecentCap = 3
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := store.SaveChange(ctx, sampleChange(name))
		require.NoError(t, err)
	}

	records, err := store.RecentUpdates(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3, "list is trimmed to the cap")

	assert.Equal(t, "e", records[0].Name, "newest first")
	assert.Equal(t, "d", records[1].Name)
	assert.Equal(t, "c", records[2].Name)

	limited, err := store.RecentUpdates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "e", limited[0].Name)
}

func TestStoreDeleteStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveChange(ctx, sampleChange("login"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteStatus(ctx, "login"))

	_, err = store.GetStatus(ctx, "login")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestStoreDeleteAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		_, err := store.SaveChange(ctx, sampleChange(name))
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteAll(ctx))

	records, err := store.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	recent, err := store.RecentUpdates(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
