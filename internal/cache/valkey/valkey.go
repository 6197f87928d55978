// Package valkey implements the cache driver backed by a Valkey server.
package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	valkeygo "github.com/valkey-io/valkey-go"

	"github.com/vaadly/vaadly/internal/cache"
)

func init() {
	cache.RegisterDriver("valkey", func(cfg map[string]any) (cache.Cache, error) {
		return NewFromMap(cfg)
	})
}

// Config holds the valkey driver settings from the cache.drivers.valkey
// config section.
type Config struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Cache talks to a Valkey server.
type Cache struct {
	client valkeygo.Client
}

// NewFromMap decodes the driver config section and connects.
func NewFromMap(raw map[string]any) (*Cache, error) {
	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("valkey: decode config: %w", err)
	}
	return New(&cfg)
}

// New connects to the configured Valkey server.
func New(cfg *Config) (*Cache, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey: address is required")
	}

	client, err := valkeygo.NewClient(valkeygo.ClientOption{
		InitAddress:  []string{cfg.Address},
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey: connect %s: %w", cfg.Address, err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	value, err := resp.AsBytes()
	if err != nil {
		if valkeygo.IsValkeyNil(err) {
			return nil, cache.ErrCacheMiss
		}
		return nil, err
	}
	return value, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := c.client.B().Set().Key(key).Value(string(value)).Build()
	if ttl <= 0 {
		return c.client.Do(ctx, set).Error()
	}

	pexpire := c.client.B().Pexpire().Key(key).Milliseconds(ttl.Milliseconds()).Build()
	for _, resp := range c.client.DoMulti(ctx, set, pexpire) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
}

func (c *Cache) Incr(ctx context.Context, key string, delta int64, window time.Duration) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Incrby().Key(key).Increment(delta).Build())
	count, err := resp.AsInt64()
	if err != nil {
		return 0, err
	}

	// First increment in a fresh window sets the expiry.
	if count == delta && window > 0 {
		expire := c.client.B().Pexpire().Key(key).Milliseconds(window.Milliseconds()).Build()
		if err := c.client.Do(ctx, expire).Error(); err != nil {
			return 0, err
		}
	}

	return count, nil
}

func (c *Cache) Close() error {
	c.client.Close()
	return nil
}
