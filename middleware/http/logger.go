package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kochabx/docvault/log"
)

// LoggerConfig 访问日志配置
//
// 请求体和响应体是文档明文或密文，从不记录
type LoggerConfig struct {
	Logger    *log.Logger
	SkipPaths []string
	SkipFunc  func(*gin.Context) bool

	// Fields 追加自定义字段，例如所有者
	Fields func(c *gin.Context, e *zerolog.Event)
}

// Logger 记录访问日志，5xx 为 error，4xx 为 warn
func Logger(cfg LoggerConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	s := newSkipper(cfg.SkipPaths, cfg.SkipFunc)

	return func(c *gin.Context) {
		if s.skip(c) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var e *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			e = cfg.Logger.Error()
		case status >= http.StatusBadRequest:
			e = cfg.Logger.Warn()
		default:
			e = cfg.Logger.Info()
		}

		e = e.Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Str("client_ip", c.ClientIP()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size()).
			Dur("duration", time.Since(start))
		if id := c.GetHeader("X-Request-Id"); id != "" {
			e = e.Str("request_id", id)
		}
		if cfg.Fields != nil {
			cfg.Fields(c, e)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			e = e.Str("errors", errs.String())
		}
		e.Msg("request")
	}
}
