package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/taskvault/task-tracker-api/internal/repo"
)

func setupTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to ping redis: %v", err)
	}
	return client
}

func TestStatsCache_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	statsCache := NewStatsCache(client, time.Minute, nil)
	ctx := context.Background()

	stats := repo.Stats{
		Total:      4,
		ByStatus:   map[string]int{"pending": 3, "completed": 1},
		ByPriority: map[string]int{"medium": 4},
	}

	_, ok := statsCache.Get(ctx, "owner-cache-test")
	assert.False(t, ok, "cold cache should miss")

	statsCache.Set(ctx, "owner-cache-test", stats)

	got, ok := statsCache.Get(ctx, "owner-cache-test")
	assert.True(t, ok)
	assert.Equal(t, stats, got)

	statsCache.Invalidate(ctx, "owner-cache-test")

	_, ok = statsCache.Get(ctx, "owner-cache-test")
	assert.False(t, ok, "invalidated entry must not be served")
}
