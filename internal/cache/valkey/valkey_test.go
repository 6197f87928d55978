package valkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaadly/vaadly/internal/cache"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	c, err := New(&Config{Address: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestSetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))

	_, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestSetWithTTL(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	srv.FastForward(2 * time.Minute)

	_, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestIncrWindow(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	n, err := c.Incr(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	srv.FastForward(2 * time.Minute)

	n, err = c.Incr(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter resets after the window")
}

func TestNewFromMap(t *testing.T) {
	srv := miniredis.RunT(t)

	c, err := NewFromMap(map[string]any{"address": srv.Addr()})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
}

func TestNewRequiresAddress(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
}
