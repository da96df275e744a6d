package rate

import (
	"context"
	_ "embed"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed tokenbucket.lua
	tokenBucketLua       string
	tokenBucketLuaScript = redis.NewScript(tokenBucketLua)
)

type TokenBucketLimiter struct {
	client   redis.UniversalClient
	prefix   string
	capacity int
	rate     float64
	script   *redis.Script
}

var _ Limiter = (*TokenBucketLimiter)(nil)

func NewTokenBucketLimiter(client redis.UniversalClient, prefix string, capacity int, rate float64) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		client:   client,
		prefix:   prefix,
		capacity: capacity,
		rate:     rate,
		script:   tokenBucketLuaScript,
	}
}

func (lim *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return lim.AllowN(ctx, key, time.Now(), 1)
}

func (lim *TokenBucketLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	result, err := lim.script.Run(ctx, lim.client, []string{lim.prefix + key}, lim.capacity, lim.rate, t.UnixMilli(), n).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
