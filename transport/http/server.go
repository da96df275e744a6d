package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/log"
	"github.com/kochabx/docvault/metrics"
	"github.com/kochabx/docvault/transport"
)

var _ transport.Server = (*Server)(nil)

const defaultAddr = ":8080"

// HealthCheck 健康探测函数，返回错误时接口响应 503
type HealthCheck func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheck
}

type Server struct {
	name     string
	config   Config
	registry *metrics.Prometheus
	checks   []namedCheck
	server   *http.Server
}

type Option func(*Server)

func WithName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

// WithConfig 使用配置中的超时、指标和健康检查设置，Addr 为空时保留 NewServer 的地址
func WithConfig(c Config) Option {
	return func(s *Server) {
		addr := s.config.Addr
		s.config = c
		if c.Addr == "" {
			s.config.Addr = addr
		}
	}
}

// WithRegistry 指标接口导出的 registry
func WithRegistry(p *metrics.Prometheus) Option {
	return func(s *Server) {
		if p != nil {
			s.registry = p
		}
	}
}

// WithHealthCheck 注册健康检查依赖，按注册顺序探测
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		if check != nil {
			s.checks = append(s.checks, namedCheck{name: name, check: check})
		}
	}
}

func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	if addr == "" {
		addr = defaultAddr
	}
	s := &Server{
		name:     "http",
		config:   Config{Addr: addr},
		registry: metrics.Prom,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := tag.ApplyDefaults(&s.config); err != nil {
		log.Error().Err(err).Str("server", s.name).Msg("failed to apply http defaults")
	}

	if r, ok := handler.(*gin.Engine); ok {
		s.mount(r)
	}

	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	return s
}

// mount 在 gin 引擎上挂载指标和健康检查接口
func (s *Server) mount(r *gin.Engine) {
	if m := s.config.Metrics; m.Enabled {
		if m.Runtime {
			s.registry.WithGoCollectorRuntimeMetrics()
		}
		if m.BuildInfo {
			s.registry.WithBuildInfoCollector()
		}
		r.GET(m.Path, gin.WrapH(promhttp.HandlerFor(s.registry.Registry(), promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}

	if h := s.config.Health; h.Enabled {
		r.GET(h.Path, s.health)
	}
}

// health 只返回失败的依赖名称，错误详情写入日志
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Health.Timeout)
	defer cancel()

	var failed []string
	for _, nc := range s.checks {
		if err := nc.check(ctx); err != nil {
			log.Warn().Err(err).Str("check", nc.name).Msg("health check failed")
			failed = append(failed, nc.name)
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Run() error {
	if err := transport.CheckAddress(s.server.Addr); err != nil {
		return err
	}
	log.Info().Str("server", s.name).Str("addr", s.server.Addr).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler 返回挂载了附加接口的根 handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr 实际使用的监听地址
func (s *Server) Addr() string {
	return s.server.Addr
}
