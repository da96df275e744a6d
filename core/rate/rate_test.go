package rate

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	c := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{"127.0.0.1:1"}})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func liveClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	addrs := os.Getenv("REDIS_ADDRS")
	if addrs == "" {
		t.Skip("REDIS_ADDRS not set")
	}
	c := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    strings.Split(addrs, ","),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()).Err())
	return c
}

func TestNew(t *testing.T) {
	client := offlineClient(t)

	lim, err := New(client, Config{})
	require.NoError(t, err)
	tb, ok := lim.(*TokenBucketLimiter)
	require.True(t, ok)
	assert.Equal(t, "docvault:ratelimit:", tb.prefix)
	assert.Equal(t, 10, tb.capacity)
	assert.Equal(t, 1.0, tb.rate)

	lim, err = New(client, Config{Algorithm: AlgorithmSlidingWindow, Window: time.Second, Limit: 5})
	require.NoError(t, err)
	sw, ok := lim.(*SlidingWindowLimiter)
	require.True(t, ok)
	assert.Equal(t, time.Second, sw.window)
	assert.Equal(t, 5, sw.limit)
}

func TestNewRejects(t *testing.T) {
	client := offlineClient(t)

	tests := []struct {
		name   string
		client redis.UniversalClient
		cfg    Config
	}{
		{"nil client", nil, Config{}},
		{"unknown algorithm", client, Config{Algorithm: "leaky"}},
		{"negative rate", client, Config{Rate: -1}},
		{"negative limit", client, Config{Algorithm: AlgorithmSlidingWindow, Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.client, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLimiterRedisError(t *testing.T) {
	lim := NewTokenBucketLimiter(offlineClient(t), "test:", 1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ok, err := lim.Allow(ctx, "owner")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	lim := NewTokenBucketLimiter(liveClient(t), "docvault:test:tb:", 2, 1)
	key := uuid.NewString()
	now := time.Now()

	for i := 0; i < 2; i++ {
		ok, err := lim.AllowN(ctx, key, now, 1)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := lim.AllowN(ctx, key, now, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = lim.AllowN(ctx, key, now.Add(time.Second), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// 其他 key 不受影响
	ok, err = lim.AllowN(ctx, uuid.NewString(), now, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	lim := NewSlidingWindowLimiter(liveClient(t), "docvault:test:sw:", time.Second, 2)
	key := uuid.NewString()
	now := time.Now()

	ok, err := lim.AllowN(ctx, key, now, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lim.AllowN(ctx, key, now, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = lim.AllowN(ctx, key, now.Add(1100*time.Millisecond), 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
