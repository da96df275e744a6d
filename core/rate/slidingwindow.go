package rate

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	//go:embed slidingwindow.lua
	slidingWindowLua       string
	slidingWindowLuaScript = redis.NewScript(slidingWindowLua)
)

type SlidingWindowLimiter struct {
	client redis.UniversalClient
	prefix string
	window time.Duration
	limit  int
	script *redis.Script
}

var _ Limiter = (*SlidingWindowLimiter)(nil)

func NewSlidingWindowLimiter(client redis.UniversalClient, prefix string, window time.Duration, limit int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		prefix: prefix,
		window: window,
		limit:  limit,
		script: slidingWindowLuaScript,
	}
}

func (limiter *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return limiter.AllowN(ctx, key, time.Now(), 1)
}

func (limiter *SlidingWindowLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	keys := []string{limiter.prefix + key}
	result, err := limiter.script.Run(ctx, limiter.client, keys, limiter.window.Milliseconds(), limiter.limit, t.UnixMilli(), n, uuid.NewString()).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
