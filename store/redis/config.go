package redis

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/kochabx/docvault/core/tag"
)

// Config Redis 统一配置（支持单机/集群/哨兵模式）
type Config struct {
	// Addrs Redis 地址列表
	// 单机模式: ["localhost:6379"]
	// 集群模式: ["node1:6379", "node2:6379", "node3:6379"]
	// 哨兵模式: ["sentinel1:26379", "sentinel2:26379"]
	Addrs []string `json:"addrs" mapstructure:"addrs" default:"localhost:6379"`

	// MasterName 哨兵模式的主节点名称
	MasterName string `json:"master_name" mapstructure:"master_name"`

	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// DB 数据库索引，集群模式忽略此字段
	DB int `json:"db" mapstructure:"db"`

	// Protocol 2: RESP2，3: RESP3 (Redis 6.0+)
	Protocol int `json:"protocol" mapstructure:"protocol" default:"3"`

	DialTimeout  time.Duration `json:"dial_timeout" mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout" default:"3s"`

	// PoolSize 0 表示使用默认值: 10 * runtime.GOMAXPROCS
	PoolSize     int           `json:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" mapstructure:"min_idle_conns"`
	MaxIdleTime  time.Duration `json:"max_idle_time" mapstructure:"max_idle_time" default:"5m"`
	MaxLifetime  time.Duration `json:"max_lifetime" mapstructure:"max_lifetime"`
	PoolTimeout  time.Duration `json:"pool_timeout" mapstructure:"pool_timeout" default:"4s"`

	// MaxRetries -1 禁用重试，0 默认重试 3 次
	MaxRetries      int           `json:"max_retries" mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `json:"min_retry_backoff" mapstructure:"min_retry_backoff" default:"8ms"`
	MaxRetryBackoff time.Duration `json:"max_retry_backoff" mapstructure:"max_retry_backoff" default:"512ms"`

	// TLS 启用后使用 TLS 1.2 及以上版本连接
	TLS bool `json:"tls" mapstructure:"tls"`

	// 集群模式配置
	MaxRedirects   int  `json:"max_redirects" mapstructure:"max_redirects" default:"3"`
	ReadOnly       bool `json:"read_only" mapstructure:"read_only"`
	RouteByLatency bool `json:"route_by_latency" mapstructure:"route_by_latency"`
	RouteRandomly  bool `json:"route_randomly" mapstructure:"route_randomly"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single 单机
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 集群
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 哨兵，addrs 为哨兵地址
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

var (
	ErrInvalidConfig  = errors.New("redis: invalid configuration")
	ErrEmptyAddrs     = errors.New("redis: addrs cannot be empty")
	ErrInvalidTimeout = errors.New("redis: negative timeout")
)

// Validate 检查地址和超时
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	for _, d := range []time.Duration{c.DialTimeout, c.ReadTimeout, c.WriteTimeout, c.PoolTimeout} {
		if d < 0 {
			return ErrInvalidTimeout
		}
	}
	return nil
}

// Mode 与 redis.NewUniversalClient 的选择规则一致
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}

func (c *Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}
