package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/docvault/log"
	"github.com/kochabx/docvault/transport/http/response"
)

// RecoveryConfig panic 恢复配置
type RecoveryConfig struct {
	StackTrace bool
	Logger     *log.Logger
}

// Recovery 捕获 panic 并返回 500，响应中不带 panic 内容
func Recovery(cfg RecoveryConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			// 客户端已断开，下载大文件时常见
			if err, ok := v.(error); ok && (errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)) {
				cfg.Logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("client disconnected")
				_ = c.Error(err)
				c.Abort()
				return
			}

			e := cfg.Logger.Error().
				Str("panic", fmt.Sprint(v)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path)
			if cfg.StackTrace {
				e = e.Bytes("stack", debug.Stack())
			}
			e.Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			response.GinJSONE(c, nil)
		}()
		c.Next()
	}
}
