package minio

import (
	"errors"
	"time"
)

// Config MinIO 连接和存储桶配置
type Config struct {
	Endpoint        string `json:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `json:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" mapstructure:"secret_access_key"`
	UseSSL          bool   `json:"use_ssl" mapstructure:"use_ssl"`
	Region          string `json:"region" mapstructure:"region"`

	// CreateBucket 为 false 时桶必须预先存在
	Bucket       string `json:"bucket" mapstructure:"bucket" default:"documents"`
	CreateBucket bool   `json:"create_bucket" mapstructure:"create_bucket"`

	// RequestTimeout 单次对象操作的超时
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout" default:"30s"`
}

var (
	ErrBucketNotFound  = errors.New("minio: bucket not found")
	ErrEmptyObjectName = errors.New("minio: object name cannot be empty")
)

func (c *Config) validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("minio: endpoint cannot be empty")
	case c.AccessKeyID == "" || c.SecretAccessKey == "":
		return errors.New("minio: credentials cannot be empty")
	case c.Bucket == "":
		return errors.New("minio: bucket cannot be empty")
	case c.RequestTimeout <= 0:
		return errors.New("minio: request timeout must be positive")
	}
	return nil
}
