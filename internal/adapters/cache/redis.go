// Package cache holds the Redis-backed view count cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventboard/internal/domain"
)

const keyPrefix = "eventboard:views:"

// RedisConfig holds the connection settings of the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server. Callers should run without a
// cache when it returns an error.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type redisViewCache struct {
	client redis.Cmdable
}

// NewViewCache returns a ViewCache storing one integer key per event.
func NewViewCache(client redis.Cmdable) domain.ViewCache {
	return &redisViewCache{client: client}
}

func viewKey(eventID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, eventID)
}

func (c *redisViewCache) Get(ctx context.Context, eventID int64) (int64, bool, error) {
	v, err := c.client.Get(ctx, viewKey(eventID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get cached views: %w", err)
	}
	return v, true, nil
}

func (c *redisViewCache) Set(ctx context.Context, eventID int64, views int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, viewKey(eventID), views, ttl).Err(); err != nil {
		return fmt.Errorf("set cached views: %w", err)
	}
	return nil
}
