package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
)

// ErrMiss is returned by Get when the key is not cached
var ErrMiss = errors.New("cache miss")

// Client wraps redis.Client for the container view cache
type Client struct {
	*redis.Client
	ttl time.Duration
}

// NewClient creates a redis-backed cache. It returns nil when no address is configured.
func NewClient(cfg *config.CacheConfig) *Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
		ttl: cfg.ViewTTL,
	}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Get returns the cached bytes for key, or ErrMiss
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return raw, err
}

// Set stores value under key for the configured TTL
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	return c.Client.Set(ctx, key, value, c.ttl).Err()
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

// Incr bumps the counter stored under key
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}
