package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// skipper 判断请求是否绕过中间件
//
// 路径写法：
//   - "/api/health" 精确匹配
//   - "/metrics/**" 匹配 /metrics 本身及其子路径
//   - 含 * ? [ 的路径按 path.Match 匹配
type skipper struct {
	exact    map[string]struct{}
	prefixes []string
	globs    []string
	fn       func(*gin.Context) bool
}

func newSkipper(paths []string, fn func(*gin.Context) bool) *skipper {
	s := &skipper{exact: make(map[string]struct{}, len(paths)), fn: fn}
	for _, p := range paths {
		switch {
		case strings.HasSuffix(p, "/**"):
			s.prefixes = append(s.prefixes, strings.TrimSuffix(p, "/**"))
		case strings.ContainsAny(p, "*?["):
			s.globs = append(s.globs, p)
		default:
			s.exact[p] = struct{}{}
		}
	}
	return s
}

func (s *skipper) skip(c *gin.Context) bool {
	if s.fn != nil && s.fn(c) {
		return true
	}
	return s.match(c.Request.URL.Path)
}

func (s *skipper) match(p string) bool {
	if _, ok := s.exact[p]; ok {
		return true
	}
	for _, prefix := range s.prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	for _, g := range s.globs {
		if ok, _ := path.Match(g, p); ok {
			return true
		}
	}
	return false
}
