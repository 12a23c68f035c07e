package ratelimit

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(t.Context()).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	t.Cleanup(func() {
		keys, _ := client.Keys(t.Context(), "test:tasks:*").Result()
		if len(keys) > 0 {
			client.Del(t.Context(), keys...)
		}
		_ = client.Close()
	})
	return client
}

func TestLimiter_Allow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewLimiter(client, "test:tasks:")
	key := "user:" + t.Name()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(t.Context(), key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(t.Context(), key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.True(t, res.ResetAt.After(time.Now()))
	assert.Positive(t, res.RetryAfter(time.Now()))
}
