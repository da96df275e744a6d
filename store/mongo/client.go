package mongo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/log"
)

var ErrConnectionFailed = errors.New("mongo: connection failed")

// Config MongoDB 连接配置，URI 非空时忽略 Host 等字段
type Config struct {
	URI         string        `json:"uri" mapstructure:"uri"`
	Host        string        `json:"host" mapstructure:"host" default:"localhost"`
	Port        int           `json:"port" mapstructure:"port" default:"27017"`
	User        string        `json:"user" mapstructure:"user"`
	Password    string        `json:"password" mapstructure:"password"`
	AuthSource  string        `json:"auth_source" mapstructure:"auth_source" default:"admin"`
	Database    string        `json:"database" mapstructure:"database" default:"docvault"`
	MaxPoolSize uint64        `json:"max_pool_size" mapstructure:"max_pool_size" default:"10"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
}

func (c *Config) uri() string {
	if c.URI != "" {
		return c.URI
	}
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), Path: "/"}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
		u.RawQuery = url.Values{"authSource": {c.AuthSource}}.Encode()
	}
	return u.String()
}

// Client 持有 mongo.Client 和默认数据库名
type Client struct {
	client *mongo.Client
	config *Config
	logger *log.Logger
}

type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New 连接并在 Timeout 内 ping 主节点
func New(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, errors.New("mongo: config is required")
	}
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, err
	}

	c := &Client{config: config, logger: log.G}
	for _, opt := range opts {
		opt(c)
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(config.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{NilSliceAsEmpty: true}).
		SetMaxPoolSize(config.MaxPoolSize).
		SetConnectTimeout(config.Timeout).
		SetServerSelectionTimeout(config.Timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	c.client = client

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c.logger.Debug().Str("database", config.Database).Msg("mongodb connected")
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接，最多等待 Timeout
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// Database name 为空时使用配置中的数据库
func (c *Client) Database(name string) *mongo.Database {
	if name == "" {
		name = c.config.Database
	}
	return c.client.Database(name)
}
