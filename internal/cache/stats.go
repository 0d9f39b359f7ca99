package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskvault/task-tracker-api/internal/repo"
)

// StatsCache keeps per-owner dashboard aggregates in Redis. Failures are
// logged and reported as cache misses; the caller falls back to the store.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *StatsCache) Get(ctx context.Context, ownerID string) (repo.Stats, bool) {
	var stats repo.Stats

	payload, err := c.client.Get(ctx, key(ownerID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("stats cache read failed", zap.Error(err))
		}
		return stats, false
	}

	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		c.logger.Warn("stats cache entry corrupt", zap.Error(err))
		return stats, false
	}
	return stats, true
}

func (c *StatsCache) Set(ctx context.Context, ownerID string, stats repo.Stats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(ownerID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.Error(err))
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, ownerID string) {
	if err := c.client.Del(ctx, key(ownerID)).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func key(ownerID string) string {
	return "stats:" + ownerID
}
