package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config token 签发和校验配置，只支持 HMAC
type Config struct {
	Secret         string        `json:"secret" mapstructure:"secret" validate:"required"`
	SigningMethod  string        `json:"signingMethod" mapstructure:"signingMethod" default:"HS256" validate:"oneof=HS256 HS384 HS512"`
	AccessTokenTTL time.Duration `json:"accessTokenTTL" mapstructure:"accessTokenTTL" default:"1h" validate:"gt=0"`

	// Issuer 非空时签发写入 iss，校验时要求一致
	Issuer   string   `json:"issuer" mapstructure:"issuer"`
	Audience []string `json:"audience" mapstructure:"audience"`

	// Leeway 允许的时钟偏差
	Leeway time.Duration `json:"leeway" mapstructure:"leeway" default:"30s"`
}

func (c *Config) method() jwt.SigningMethod {
	switch c.SigningMethod {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// Option 在默认值之后修改配置
type Option func(*Config)

func WithIssuer(issuer string) Option {
	return func(c *Config) {
		c.Issuer = issuer
	}
}

func WithAudience(audience ...string) Option {
	return func(c *Config) {
		c.Audience = audience
	}
}

func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.AccessTokenTTL = ttl
	}
}
