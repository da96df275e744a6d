package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/docvault/core/tag"
)

var (
	ErrInvalidConfig = errors.New("kafka: invalid config")
	ErrEmptyBrokers  = errors.New("kafka: empty brokers")
	ErrEmptyTopic    = errors.New("kafka: empty topic")
	ErrClientClosed  = errors.New("kafka: client is closed")
)

// Config 活动事件生产者配置
type Config struct {
	Brokers []string `json:"brokers" mapstructure:"brokers" default:"localhost:9092"`
	Topic   string   `json:"topic" mapstructure:"topic" default:"document-activity"`

	// SASL/PLAIN，用户名和密码同时设置时启用
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// Balancer hash 使同一所有者的事件落在同一分区，保持顺序
	Balancer string `json:"balancer" mapstructure:"balancer" default:"hash" validate:"oneof=hash least_bytes"`

	// RequiredAcks -1 等待全部副本，1 只等待 leader
	RequiredAcks int `json:"requiredAcks" mapstructure:"requiredAcks" default:"1" validate:"oneof=-1 1"`

	AllowAutoTopicCreation bool `json:"allowAutoTopicCreation" mapstructure:"allowAutoTopicCreation"`

	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dialTimeout" default:"3s"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"writeTimeout" default:"5s"`
	// BatchTimeout 单条事件等待凑批的最长时间
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout" default:"10ms"`
}

func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrEmptyBrokers
	}
	if c.Topic == "" {
		return ErrEmptyTopic
	}
	return nil
}

func (c *Config) balancer() kafka.Balancer {
	if c.Balancer == "least_bytes" {
		return &kafka.LeastBytes{}
	}
	return &kafka.Hash{}
}
