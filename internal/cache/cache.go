// Package cache provides a small JSON read-through cache over Redis for the
// report endpoints. When Redis is not configured the noop implementation
// degrades every read to a miss, so callers never branch on availability.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values under string keys with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// InvalidatePattern deletes every key matching a glob pattern, e.g.
	// "report:*" after a posting commits.
	InvalidatePattern(ctx context.Context, pattern string) error
}

// Noop is the cache used when Redis is disabled.
type Noop struct{}

func (Noop) Get(_ context.Context, _ string, _ interface{}) (bool, error) { return false, nil }

func (Noop) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error { return nil }

func (Noop) InvalidatePattern(_ context.Context, _ string) error { return nil }

// Redis is the production cache.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *Redis) InvalidatePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
