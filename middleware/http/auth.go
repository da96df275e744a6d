package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	kerrors "github.com/kochabx/docvault/errors"
	"github.com/kochabx/docvault/transport/http/response"
)

var (
	ErrTokenMissing = errors.New("auth: token missing")
	ErrTokenInvalid = errors.New("auth: token invalid")

	// ErrUnauthorized 对外只返回这一种认证错误
	ErrUnauthorized = kerrors.Unauthorized("unauthorized")
)

// ContextKey 请求上下文中保存 claims 的 key
type ContextKey string

const DefaultContextKey ContextKey = "claims"

// Authenticator 校验 token 并返回 claims
type Authenticator[T any] interface {
	Authenticate(ctx context.Context, token string) (T, error)
}

// TokenExtractor 从请求中取出 token
type TokenExtractor func(c *gin.Context) (string, error)

// BearerToken 读取 Authorization: Bearer <token>
func BearerToken(c *gin.Context) (string, error) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrTokenMissing
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

// AuthConfig 认证中间件配置
type AuthConfig[T any] struct {
	Authenticator Authenticator[T]
	Extractor     TokenExtractor // 默认 BearerToken
	ContextKey    ContextKey
	SkipPaths     []string
	SkipFunc      func(*gin.Context) bool
}

// Auth 校验失败时返回 401 并中止，成功时把 claims 写入请求上下文
func Auth[T any](cfg AuthConfig[T]) gin.HandlerFunc {
	if cfg.Authenticator == nil {
		panic("middleware: Authenticator is required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = BearerToken
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	s := newSkipper(cfg.SkipPaths, cfg.SkipFunc)

	return func(c *gin.Context) {
		if s.skip(c) {
			c.Next()
			return
		}

		token, err := cfg.Extractor(c)
		if err == nil {
			var claims T
			claims, err = cfg.Authenticator.Authenticate(c.Request.Context(), token)
			if err == nil {
				c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), cfg.ContextKey, claims))
				c.Next()
				return
			}
			err = errors.Join(ErrTokenInvalid, err)
		}

		_ = c.Error(err)
		response.GinJSONE(c, ErrUnauthorized.WithCause(err))
	}
}

// GetClaims 取出 Auth 写入的 claims
func GetClaims[T any](ctx context.Context, keys ...ContextKey) (T, bool) {
	key := DefaultContextKey
	if len(keys) > 0 && keys[0] != "" {
		key = keys[0]
	}
	claims, ok := ctx.Value(key).(T)
	return claims, ok
}
