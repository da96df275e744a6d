package main

import (
	"crypto"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kochabx/docvault/config"
	"github.com/kochabx/docvault/core/auth/jwt"
	"github.com/kochabx/docvault/core/rate"
	"github.com/kochabx/docvault/document"
	"github.com/kochabx/docvault/log"
	"github.com/kochabx/docvault/store/blob"
	"github.com/kochabx/docvault/store/db"
	"github.com/kochabx/docvault/store/etcd"
	"github.com/kochabx/docvault/store/kafka"
	"github.com/kochabx/docvault/store/mongo"
	"github.com/kochabx/docvault/store/oss/minio"
	"github.com/kochabx/docvault/store/oss/s3"
	"github.com/kochabx/docvault/store/redis"
	transporthttp "github.com/kochabx/docvault/transport/http"
)

// envPrefix 环境变量前缀，例如 DOCVAULT_AUTH_SECRET 覆盖 auth.secret
const envPrefix = "DOCVAULT"

// Config docvault 进程配置
type Config struct {
	Log        log.Config           `json:"log" mapstructure:"log"`
	HTTP       transporthttp.Config `json:"http" mapstructure:"http"`
	Keys       KeysConfig           `json:"keys" mapstructure:"keys"`
	Etcd       etcd.Config          `json:"etcd" mapstructure:"etcd"`
	Blob       BlobConfig           `json:"blob" mapstructure:"blob"`
	Repository RepositoryConfig     `json:"repository" mapstructure:"repository"`
	Kafka      KafkaConfig          `json:"kafka" mapstructure:"kafka"`
	Redis      RedisConfig          `json:"redis" mapstructure:"redis"`
	RateLimit  RateLimitConfig      `json:"rate_limit" mapstructure:"rate_limit"`
	Document   document.Config      `json:"document" mapstructure:"document"`
	Auth       jwt.Config           `json:"auth" mapstructure:"auth"`
}

// KeysConfig 密钥对存储配置
type KeysConfig struct {
	// Backend 密钥存储后端：file 本地目录，etcd 集中存储
	Backend        string `json:"backend" mapstructure:"backend" default:"file" validate:"oneof=file etcd"`
	Dir            string `json:"dir" mapstructure:"dir" default:"keys"`
	Prefix         string `json:"prefix" mapstructure:"prefix" default:"/docvault/keys"`
	PrivateKeyName string `json:"private_key_name" mapstructure:"private_key_name" default:"private.pem" validate:"basename"`
	PublicKeyName  string `json:"public_key_name" mapstructure:"public_key_name" default:"public.pem" validate:"basename,nefield=PrivateKeyName"`
	Bits           int    `json:"bits" mapstructure:"bits" default:"2048" validate:"gte=2048"`
	Cache          bool   `json:"cache" mapstructure:"cache"`

	// OAEPHash 包装新文档密钥使用的哈希
	OAEPHash string `json:"oaep_hash" mapstructure:"oaep_hash" default:"sha256" validate:"oneof=sha256 sha1"`
	// LegacyOAEPHashes 解密时在 OAEPHash 失败后依次尝试，用于读取旧部署写入的数据
	LegacyOAEPHashes []string `json:"legacy_oaep_hashes" mapstructure:"legacy_oaep_hashes" validate:"dive,oneof=sha256 sha1"`
}

func parseHash(name string) crypto.Hash {
	if name == "sha1" {
		return crypto.SHA1
	}
	return crypto.SHA256
}

func (c *KeysConfig) hash() crypto.Hash {
	return parseHash(c.OAEPHash)
}

func (c *KeysConfig) legacyHashes() []crypto.Hash {
	hashes := make([]crypto.Hash, 0, len(c.LegacyOAEPHashes))
	for _, name := range c.LegacyOAEPHashes {
		hashes = append(hashes, parseHash(name))
	}
	return hashes
}

// BlobConfig 密文存储配置
type BlobConfig struct {
	Backend string       `json:"backend" mapstructure:"backend" default:"local" validate:"oneof=local minio s3"`
	Local   blob.Config  `json:"local" mapstructure:"local"`
	MinIO   minio.Config `json:"minio" mapstructure:"minio"`
	S3      s3.Config    `json:"s3" mapstructure:"s3"`
}

// RepositoryConfig 元数据存储配置
type RepositoryConfig struct {
	Backend string       `json:"backend" mapstructure:"backend" default:"sql" validate:"oneof=sql mongo"`
	SQL     db.Config    `json:"sql" mapstructure:"sql"`
	Mongo   mongo.Config `json:"mongo" mapstructure:"mongo"`
}

// KafkaConfig 活动事件发布配置，未启用时事件被丢弃
type KafkaConfig struct {
	Enabled      bool `json:"enabled" mapstructure:"enabled"`
	kafka.Config `mapstructure:",squash"`
}

// RedisConfig 限流使用的 redis 连接
type RedisConfig struct {
	redis.Config `mapstructure:",squash"`

	// Debug 记录每条命令，SlowQuery 为慢查询阈值
	Debug     bool          `json:"debug" mapstructure:"debug"`
	SlowQuery time.Duration `json:"slow_query" mapstructure:"slow_query" default:"100ms"`

	// Instrument 通过 OpenTelemetry 全局 provider 导出 trace 和指标
	Instrument bool `json:"instrument" mapstructure:"instrument"`
}

// RateLimitConfig 上传限流配置，启用时需要 redis
type RateLimitConfig struct {
	Enabled     bool `json:"enabled" mapstructure:"enabled"`
	FailClosed  bool `json:"fail_closed" mapstructure:"fail_closed"`
	rate.Config `mapstructure:",squash"`
}

// loadConfig 读取配置文件，环境变量优先于文件
func loadConfig(path string, target *Config) error {
	c := config.New(target,
		config.WithFile(filepath.Base(path), filepath.Dir(path)),
		config.WithEnvPrefix(envPrefix),
	)
	if err := c.Load(); err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return nil
}
