package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, Content-Length, X-Request-Id"
	// 下载时浏览器需要读取文件名
	corsExpose = "Content-Disposition"
)

// CorsConfig 跨域配置
type CorsConfig struct {
	// AllowOrigins 为空或包含 "*" 时允许任意源，"*.example.com" 匹配子域名
	AllowOrigins []string
	MaxAge       time.Duration
}

// Cors 跨域中间件，不允许携带 cookie，凭证只走 Authorization 头
func Cors(cfgs ...CorsConfig) gin.HandlerFunc {
	cfg := CorsConfig{MaxAge: 12 * time.Hour}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	anyOrigin := len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || (!anyOrigin && !originAllowed(origin, cfg.AllowOrigins)) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		if anyOrigin {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Expose-Headers", corsExpose)
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(a, "*"); ok && strings.HasPrefix(suffix, ".") && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
