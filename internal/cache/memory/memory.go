// Package memory implements an in-process cache driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vaadly/vaadly/internal/cache"
)

func init() {
	cache.RegisterDriver("memory", func(cfg map[string]any) (cache.Cache, error) {
		return New(), nil
	})
}

type entry struct {
	value     []byte
	counter   int64
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is an in-memory cache with lazy expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(c.entries, key)
		return nil, cache.ErrCacheMiss
	}

	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := &entry{value: stored}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Incr(ctx context.Context, key string, delta int64, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, ok := c.entries[key]
	if !ok || e.expired(now) {
		e = &entry{}
		if window > 0 {
			e.expiresAt = now.Add(window)
		}
		c.entries[key] = e
	}

	e.counter += delta
	return e.counter, nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	return nil
}
