package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/kochabx/docvault/log"
)

// Client 持有单个主题的同步生产者
type Client struct {
	config *Config
	writer *kafka.Writer
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

type Option func(*Client)

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建生产者，不会连接 broker，首次写入时才建立连接
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg, logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               cfg.balancer(),
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreation,
		WriteTimeout:           cfg.WriteTimeout,
		BatchTimeout:           cfg.BatchTimeout,
		Transport: &kafka.Transport{
			DialTimeout: cfg.DialTimeout,
			SASL:        cfg.mechanism(),
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			c.logger.Warn().Str("topic", cfg.Topic).Msgf(msg, args...)
		}),
	}

	c.logger.Debug().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("kafka producer created")
	return c, nil
}

// mechanism 未配置认证时返回 nil
func (c *Config) mechanism() sasl.Mechanism {
	if c.Username == "" || c.Password == "" {
		return nil
	}
	return plain.Mechanism{Username: c.Username, Password: c.Password}
}

// Dialer 与生产者使用相同认证的拨号器，供读取方使用
func (c *Client) Dialer() *kafka.Dialer {
	return &kafka.Dialer{
		Timeout:       c.config.DialTimeout,
		DualStack:     true,
		SASLMechanism: c.config.mechanism(),
	}
}

func (c *Client) Topic() string {
	return c.config.Topic
}

// WriteMessages 写入当前主题，关闭后返回 ErrClientClosed
func (c *Client) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClientClosed
	}
	return c.writer.WriteMessages(ctx, msgs...)
}

// Close 刷出缓冲中的消息，可重复调用
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.writer.Close()
}
