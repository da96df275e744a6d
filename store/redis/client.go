package redis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/docvault/log"
)

// Client 包装 redis.UniversalClient，按配置选择单机、集群或哨兵
type Client struct {
	client redis.UniversalClient
	mode   string
	logger *log.Logger
}

type options struct {
	logger    *log.Logger
	hooks     []redis.Hook
	debug     bool
	slowQuery time.Duration
	tracing   bool
	metrics   bool
}

type Option func(*options)

func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithHooks(hooks ...redis.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithDebug 以 debug 级别记录每条命令，超过 slowQuery 的命令记为 warn，0 表示不检测
func WithDebug(slowQuery time.Duration) Option {
	return func(o *options) {
		o.debug = true
		o.slowQuery = slowQuery
	}
}

// WithTracing 通过 OpenTelemetry 全局 TracerProvider 导出 span
func WithTracing() Option {
	return func(o *options) {
		o.tracing = true
	}
}

// WithMetrics 通过 OpenTelemetry 全局 MeterProvider 导出连接池和命令指标
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}

// New 创建客户端并 ping 一次，失败时关闭连接
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	c := &Client{
		client: redis.NewUniversalClient(buildUniversalOptions(cfg)),
		mode:   cfg.Mode(),
		logger: o.logger,
	}
	if err := c.instrument(o); err != nil {
		_ = c.client.Close()
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("redis: ping %v: %w", cfg.Addrs, err)
	}

	c.logger.Debug().Str("mode", c.mode).Strs("addrs", cfg.Addrs).Msg("redis connected")
	return c, nil
}

func buildUniversalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}

	return &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Protocol:   cfg.Protocol,
		TLSConfig:  cfg.tlsConfig(),

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:        poolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.MaxIdleTime,
		ConnMaxLifetime: cfg.MaxLifetime,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,

		MaxRedirects:   cfg.MaxRedirects,
		ReadOnly:       cfg.ReadOnly,
		RouteByLatency: cfg.RouteByLatency,
		RouteRandomly:  cfg.RouteRandomly,
	}
}

func (c *Client) instrument(o *options) error {
	for _, h := range o.hooks {
		c.client.AddHook(h)
	}
	if o.tracing {
		if err := redisotel.InstrumentTracing(c.client); err != nil {
			return fmt.Errorf("redis: tracing: %w", err)
		}
	}
	if o.metrics {
		if err := redisotel.InstrumentMetrics(c.client); err != nil {
			return fmt.Errorf("redis: metrics: %w", err)
		}
	}
	if o.debug {
		c.client.AddHook(&commandLogger{logger: c.logger, slow: o.slowQuery})
	}
	return nil
}

// UniversalClient 底层客户端，限流脚本直接在上面执行
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.client
}

func (c *Client) Mode() string {
	return c.mode
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
