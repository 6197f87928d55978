// Package cache defines the shared cache abstraction and driver registry.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-value cache with per-key TTLs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Incr atomically adds delta to the counter at key and returns the new
	// value. A counter created by this call expires after window.
	Incr(ctx context.Context, key string, delta int64, window time.Duration) (int64, error)

	// Close releases resources held by the cache.
	Close() error
}

// Factory creates a cache from its driver-specific configuration map.
type Factory func(cfg map[string]any) (Cache, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// RegisterDriver registers a cache driver factory by name.
func RegisterDriver(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// NewFromConfig creates a cache for the named driver. The cfg map holds the
// driver section from the config file; drivers decode what they need.
func NewFromConfig(driver string, cfg map[string]any) (Cache, error) {
	driversMu.RLock()
	factory, ok := drivers[driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown cache driver: %s", driver)
	}

	return factory(cfg)
}
