package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/docvault/core/tag"
)

// Algorithm names accepted by Config.
const (
	AlgorithmTokenBucket   = "token_bucket"
	AlgorithmSlidingWindow = "sliding_window"
)

var ErrInvalidConfig = errors.New("rate: invalid configuration")

// Limiter decides whether the caller identified by key may proceed. State is
// kept in redis so every replica enforces the same budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error)
}

// Config selects and parameterizes a Limiter.
type Config struct {
	Algorithm string `json:"algorithm" mapstructure:"algorithm" default:"token_bucket" validate:"oneof=token_bucket sliding_window"`
	Prefix    string `json:"prefix" mapstructure:"prefix" default:"docvault:ratelimit:"`

	// token bucket: Capacity is the burst, Rate the refill in tokens per second
	Capacity int     `json:"capacity" mapstructure:"capacity" default:"10"`
	Rate     float64 `json:"rate" mapstructure:"rate" default:"1"`

	// sliding window: at most Limit requests per Window
	Window time.Duration `json:"window" mapstructure:"window" default:"1m"`
	Limit  int           `json:"limit" mapstructure:"limit" default:"30"`
}

// New returns the limiter described by c.
func New(client redis.UniversalClient, c Config) (Limiter, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil redis client", ErrInvalidConfig)
	}
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, err
	}

	switch c.Algorithm {
	case AlgorithmTokenBucket:
		if c.Capacity <= 0 || c.Rate <= 0 {
			return nil, fmt.Errorf("%w: capacity and rate must be positive", ErrInvalidConfig)
		}
		return NewTokenBucketLimiter(client, c.Prefix, c.Capacity, c.Rate), nil
	case AlgorithmSlidingWindow:
		if c.Limit <= 0 || c.Window < time.Millisecond {
			return nil, fmt.Errorf("%w: limit and window must be positive", ErrInvalidConfig)
		}
		return NewSlidingWindowLimiter(client, c.Prefix, c.Window, c.Limit), nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, c.Algorithm)
	}
}
