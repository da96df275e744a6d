package s3

import (
	"errors"
	"time"
)

// Config S3 存储配置
type Config struct {
	Region          string `json:"region" mapstructure:"region" default:"us-east-1"`
	Bucket          string `json:"bucket" mapstructure:"bucket" default:"documents"`
	AccessKeyID     string `json:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" mapstructure:"secret_access_key"`

	// Endpoint 为空时使用 AWS 默认地址，兼容 S3 协议的服务需要设置
	Endpoint     string `json:"endpoint" mapstructure:"endpoint"`
	UsePathStyle bool   `json:"use_path_style" mapstructure:"use_path_style"`

	// Prefix 对象键前缀
	Prefix         string        `json:"prefix" mapstructure:"prefix"`
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout" default:"30s"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket cannot be empty")
	}
	if c.Region == "" {
		return errors.New("region cannot be empty")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("access key ID and secret access key must be set together")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	return nil
}
