package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

func setupRedisStore(t *testing.T, limit int) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, limit), mr
}

func historyEntry(name string) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		Name:         name,
		SessionCount: 2,
		AnomalyCount: 1,
		Sessions: []domain.Session{
			{SessionID: "s1", Protocol: "SIP"},
			{SessionID: "s2", Protocol: "HTTP"},
		},
	}
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, _ := setupRedisStore(t, 10)
	ctx := context.Background()

	entry := historyEntry("first upload")
	require.NoError(t, store.Save(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.NotEmpty(t, entry.Timestamp)

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "first upload", got.Name)
	assert.Equal(t, 2, got.SessionCount)
	require.Len(t, got.Sessions, 2)
	assert.Equal(t, "s1", got.Sessions[0].SessionID)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupRedisStore(t, 10)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestRedisStore_ListNewestFirstWithoutPayload(t *testing.T) {
	store, _ := setupRedisStore(t, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, historyEntry(fmt.Sprintf("entry-%d", i))))
	}

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "entry-2", entries[0].Name)
	assert.Equal(t, "entry-0", entries[2].Name)
	for _, e := range entries {
		assert.Nil(t, e.Sessions)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupRedisStore(t, 10)
	ctx := context.Background()

	entry := historyEntry("doomed")
	require.NoError(t, store.Save(ctx, entry))
	require.NoError(t, store.Delete(ctx, entry.ID))

	_, err := store.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	assert.ErrorIs(t, store.Delete(ctx, entry.ID), domain.ErrEntryNotFound)
}

func TestRedisStore_BoundedToLimit(t *testing.T) {
	store, _ := setupRedisStore(t, 2)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		e := historyEntry(fmt.Sprintf("entry-%d", i))
		require.NoError(t, store.Save(ctx, e))
		ids = append(ids, e.ID)
	}

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry-3", entries[0].Name)
	assert.Equal(t, "entry-2", entries[1].Name)

	// oldest entries were trimmed away entirely
	_, err = store.Get(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}
