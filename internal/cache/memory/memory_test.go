package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaadly/vaadly/internal/cache"
)

func TestSetGetDelete(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))

	_, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestGetMissingKey(t *testing.T) {
	c := New()

	_, err := c.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestTTLExpiry(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestGetReturnsCopy(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("abc"), 0))

	got, _ := c.Get(ctx, "k")
	got[0] = 'x'

	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestIncrWindow(t *testing.T) {
	c := New()
	ctx := context.Background()

	n, err := c.Incr(ctx, "counter", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "counter", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	time.Sleep(50 * time.Millisecond)

	n, err = c.Incr(ctx, "counter", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter resets after the window")
}

func TestRegisteredDriver(t *testing.T) {
	c, err := cache.NewFromConfig("memory", nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
}
