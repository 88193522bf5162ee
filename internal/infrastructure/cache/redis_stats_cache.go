package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"masterhub/internal/domain/service"
)

const statsNamespace = "review_stats"

// RedisStatsCache caches per-user review statistics.
type RedisStatsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisStatsCache(client redis.UniversalClient, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

func statsKey(userID string) string {
	return statsNamespace + ":" + userID
}

// Get returns found=false on a miss.
func (c *RedisStatsCache) Get(ctx context.Context, userID string) (*service.ReviewStats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats service.ReviewStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, userID string, stats *service.ReviewStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(userID), raw, c.ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, statsKey(userID)).Err()
}
