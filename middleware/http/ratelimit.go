package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	kerrors "github.com/kochabx/docvault/errors"
	"github.com/kochabx/docvault/log"
	"github.com/kochabx/docvault/transport/http/response"
)

var (
	// ErrTooManyRequests 超出限额
	ErrTooManyRequests = kerrors.TooManyRequests("too many requests")
	// ErrRateLimiterUnavailable 限流器不可用且配置为拒绝
	ErrRateLimiterUnavailable = kerrors.ServiceUnavailable("rate limiter unavailable")
)

// RateLimiter 按 key 判断请求是否放行
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitConfig 限流中间件配置
type RateLimitConfig struct {
	Limiter RateLimiter

	// KeyFunc 返回调用方标识，默认使用客户端 IP
	KeyFunc func(*gin.Context) string

	// FailClosed 限流器出错时拒绝请求，默认放行
	FailClosed bool

	ErrorHandler func(*gin.Context, error)
	Logger       *log.Logger
}

// RateLimit 创建限流中间件，Limiter 为空时不做任何限制
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			response.GinJSONE(c, err)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		allowed, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			cfg.Logger.Warn().Err(err).Str("path", c.FullPath()).Msg("rate limiter failed")
			if cfg.FailClosed {
				cfg.ErrorHandler(c, ErrRateLimiterUnavailable)
				return
			}
			c.Next()
			return
		}
		if !allowed {
			cfg.ErrorHandler(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
