package http

import (
	"time"
)

// Config HTTP 服务配置
type Config struct {
	Addr              string        `json:"addr" mapstructure:"addr" default:":8080" validate:"hostname_port"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" mapstructure:"readHeaderTimeout" default:"10s"`
	ReadTimeout       time.Duration `json:"readTimeout" mapstructure:"readTimeout" default:"60s"`
	WriteTimeout      time.Duration `json:"writeTimeout" mapstructure:"writeTimeout" default:"60s"`
	IdleTimeout       time.Duration `json:"idleTimeout" mapstructure:"idleTimeout" default:"120s"`
	Mode              string        `json:"mode" mapstructure:"mode" default:"release" validate:"oneof=debug release test"`

	// AllowOrigins 跨域白名单，为空时允许任意源
	AllowOrigins []string `json:"allowOrigins" mapstructure:"allowOrigins"`

	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
	Health  HealthConfig  `json:"health" mapstructure:"health"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Path      string `json:"path" mapstructure:"path" default:"/metrics"`
	Runtime   bool   `json:"runtime" mapstructure:"runtime"`
	BuildInfo bool   `json:"buildInfo" mapstructure:"buildInfo"`
}

// HealthConfig Timeout 为单次探测所有依赖的总时长
type HealthConfig struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled"`
	Path    string        `json:"path" mapstructure:"path" default:"/api/health"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" default:"2s"`
}
