package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kochabx/docvault/core/auth/jwt"
	"github.com/kochabx/docvault/log"
	middleware "github.com/kochabx/docvault/middleware/http"
)

// RouterConfig 路由配置
type RouterConfig struct {
	Documents     DocumentService
	Authenticator middleware.Authenticator[*jwt.UserClaims]
	Logger        *log.Logger

	// UploadLimiter 按所有者限制上传频率，为空时不限制
	UploadLimiter middleware.RateLimiter
	// UploadLimitFailClosed 限流器不可用时拒绝上传
	UploadLimitFailClosed bool

	// SkipLogPaths 不记录访问日志的路径
	SkipLogPaths []string
	AllowOrigins []string
}

// NewRouter 创建 gin 引擎，/api/documents 下的路由需要认证
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.G
	}
	skip := cfg.SkipLogPaths
	if skip == nil {
		skip = []string{"/api/health", "/metrics"}
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(middleware.RecoveryConfig{StackTrace: true, Logger: logger}),
		middleware.Logger(middleware.LoggerConfig{
			SkipPaths: skip,
			Logger:    logger,
			Fields: func(c *gin.Context, e *zerolog.Event) {
				if owner, ok := ownerFrom(c); ok {
					e.Str("owner", owner)
				}
			},
		}),
		middleware.Cors(middleware.CorsConfig{AllowOrigins: cfg.AllowOrigins, MaxAge: 12 * time.Hour}),
	)

	api := r.Group("/api")
	api.Use(middleware.Auth(middleware.AuthConfig[*jwt.UserClaims]{
		Authenticator: cfg.Authenticator,
	}))
	var uploadMiddleware []gin.HandlerFunc
	if cfg.UploadLimiter != nil {
		uploadMiddleware = append(uploadMiddleware, middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:    cfg.UploadLimiter,
			KeyFunc:    OwnerKey,
			FailClosed: cfg.UploadLimitFailClosed,
			Logger:     logger,
		}))
	}
	NewDocumentHandler(cfg.Documents, logger).Register(api, uploadMiddleware...)

	return r
}
