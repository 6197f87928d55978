package offline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "offline.db")
	s, err := Open(context.Background(), path, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestQueueFIFO(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := s.EnqueueMutation(ctx, "/api/tasks", "POST", nil, map[string]string{"title": name})
		require.NoError(t, err)
	}

	items, err := s.ListPendingMutations(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	var titles []string
	for _, item := range items {
		var payload map[string]string
		require.NoError(t, json.Unmarshal(item.Data, &payload))
		titles = append(titles, payload["title"])
		assert.Zero(t, item.RetryCount)
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}

func TestRemovePendingMutationIdempotence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.EnqueueMutation(ctx, "/api/events", "POST", nil, map[string]string{"title": "x"})
	require.NoError(t, err)
	_, err = s.EnqueueMutation(ctx, "/api/events", "POST", nil, map[string]string{"title": "y"})
	require.NoError(t, err)

	require.NoError(t, s.RemovePendingMutation(ctx, id))

	err = s.RemovePendingMutation(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))

	items, err := s.ListPendingMutations(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "second removal must not disturb the rest of the queue")
}

func TestIncrementRetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.EnqueueMutation(ctx, "/api/issues", "PUT", map[string]string{"X-Request-Id": "1"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.IncrementRetry(ctx, id))

	items, err := s.ListPendingMutations(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].RetryCount)
	assert.Equal(t, map[string]string{"X-Request-Id": "1"}, items[0].Headers)

	err = s.IncrementRetry(ctx, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEnqueueUnserializablePayload(t *testing.T) {
	s := newTestStore(t)

	_, err := s.EnqueueMutation(context.Background(), "/api/tasks", "POST", nil, make(chan int))
	assert.True(t, errors.Is(err, ErrSerialization))
}

func TestCacheExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCache(ctx, "events:list", []string{"a"}, 20*time.Millisecond))

	time.Sleep(40 * time.Millisecond)

	_, err := s.GetCache(ctx, "events:list")
	assert.True(t, errors.Is(err, ErrNotFound))

	// The expired read deleted the row, so the sweep finds nothing left.
	removed, err := s.SweepExpiredCache(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCacheWithoutTTLNeverExpires(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCache(ctx, "settings", map[string]string{"lang": "he"}, 0))

	time.Sleep(30 * time.Millisecond)

	raw, err := s.GetCache(ctx, "settings")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "he", got["lang"])
}

func TestPutCacheOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCache(ctx, "k", "old", 0))
	require.NoError(t, s.PutCache(ctx, "k", "new", 0))

	raw, err := s.GetCache(ctx, "k")
	require.NoError(t, err)

	var got string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "new", got)
}

func TestSweepExpiredCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCache(ctx, "stale1", 1, 10*time.Millisecond))
	require.NoError(t, s.PutCache(ctx, "stale2", 2, 10*time.Millisecond))
	require.NoError(t, s.PutCache(ctx, "fresh", 3, time.Hour))
	require.NoError(t, s.PutCache(ctx, "forever", 4, 0))

	time.Sleep(30 * time.Millisecond)

	removed, err := s.SweepExpiredCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = s.GetCache(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.GetCache(ctx, "forever")
	assert.NoError(t, err)
}

func TestDeleteCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCache(ctx, "k", "v", 0))
	require.NoError(t, s.DeleteCache(ctx, "k"))
	require.NoError(t, s.DeleteCache(ctx, "k"), "deleting a missing key is not an error")

	_, err := s.GetCache(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEntityPartitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type event struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	require.NoError(t, s.StoreEntity(ctx, "events", "e1", event{ID: "e1", Title: "Hanukkah party"}))
	require.NoError(t, s.StoreEntity(ctx, "events", "e2", event{ID: "e2", Title: "Book fair"}))
	require.NoError(t, s.StoreEntity(ctx, "tasks", "t1", map[string]string{"id": "t1"}))

	raw, err := s.GetEntity(ctx, "events", "e1")
	require.NoError(t, err)

	var got event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Hanukkah party", got.Title)

	list, err := s.ListEntities(ctx, "events")
	require.NoError(t, err)
	assert.Len(t, list, 2, "partitions are isolated from each other")

	_, err = s.GetEntity(ctx, "events", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUnknownPartition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.StoreEntity(ctx, "gremlins", "g1", "boo")
	assert.True(t, errors.Is(err, ErrPartitionNotFound))

	_, err = s.GetEntity(ctx, "gremlins", "g1")
	assert.True(t, errors.Is(err, ErrPartitionNotFound))

	_, err = s.ListEntities(ctx, "gremlins")
	assert.True(t, errors.Is(err, ErrPartitionNotFound))
}

func TestStoreEntityOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.StoreEntity(ctx, "tasks", "t1", map[string]string{"status": "todo"}))
	require.NoError(t, s.StoreEntity(ctx, "tasks", "t1", map[string]string{"status": "done"}))

	raw, err := s.GetEntity(ctx, "tasks", "t1")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "done", got["status"])
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnqueueMutation(ctx, "/api/tasks", "POST", nil, map[string]string{"title": "x"})
	require.NoError(t, err)
	require.NoError(t, s.PutCache(ctx, "k", "v", 0))
	require.NoError(t, s.StoreEntity(ctx, "events", "e1", map[string]string{"id": "e1"}))

	require.NoError(t, s.ClearAll(ctx))

	items, err := s.ListPendingMutations(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.GetCache(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := s.ListEntities(ctx, "events")
	require.NoError(t, err)
	assert.Empty(t, list)
}
