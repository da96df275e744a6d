package etcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/log"
)

var (
	ErrEtcdNotInitialized = errors.New("etcd: client not initialized")
	ErrConnectionFailed   = errors.New("etcd: connection failed")
	ErrNoEndpoints        = errors.New("etcd: endpoints cannot be empty")
)

// Config etcd 连接配置
type Config struct {
	Endpoints        []string      `json:"endpoints" mapstructure:"endpoints" default:"localhost:2379"`
	Username         string        `json:"username" mapstructure:"username"`
	Password         string        `json:"password" mapstructure:"password"`
	DialTimeout      time.Duration `json:"dial_timeout" mapstructure:"dial_timeout" default:"5s"`
	KeepAliveTime    time.Duration `json:"keep_alive_time" mapstructure:"keep_alive_time" default:"30s"`
	KeepAliveTimeout time.Duration `json:"keep_alive_timeout" mapstructure:"keep_alive_timeout" default:"5s"`
	AutoSyncInterval time.Duration `json:"auto_sync_interval" mapstructure:"auto_sync_interval"`
	// 密钥 PEM 只有几 KB，无需调大消息上限
	MaxRecvMsgSize int `json:"max_recv_msg_size" mapstructure:"max_recv_msg_size" default:"4194304"`
}

// Etcd 持有 clientv3 连接
type Etcd struct {
	Client *clientv3.Client
	config *Config
	logger *log.Logger
}

type Option func(*Etcd)

func WithLogger(logger *log.Logger) Option {
	return func(e *Etcd) {
		e.logger = logger
	}
}

// New 连接 etcd，任一 endpoint 响应 Status 即视为可用
func New(ctx context.Context, config *Config, opts ...Option) (*Etcd, error) {
	if config == nil {
		return nil, ErrNoEndpoints
	}
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, err
	}
	if len(config.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	e := &Etcd{config: config, logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	client, err := clientv3.New(clientv3.Config{
		Context:              ctx,
		Endpoints:            config.Endpoints,
		Username:             config.Username,
		Password:             config.Password,
		DialTimeout:          config.DialTimeout,
		DialKeepAliveTime:    config.KeepAliveTime,
		DialKeepAliveTimeout: config.KeepAliveTimeout,
		AutoSyncInterval:     config.AutoSyncInterval,
		MaxCallRecvMsgSize:   config.MaxRecvMsgSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	e.Client = client

	if err := e.Ping(ctx); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	e.logger.Debug().Strs("endpoints", config.Endpoints).Msg("etcd connected")
	return e, nil
}

// Ping 依次询问各 endpoint，返回最后一个错误
func (e *Etcd) Ping(ctx context.Context) error {
	if e.Client == nil {
		return ErrEtcdNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.DialTimeout)
	defer cancel()

	var err error
	for _, ep := range e.config.Endpoints {
		if _, err = e.Client.Status(ctx, ep); err == nil {
			return nil
		}
	}
	return err
}

// Close 可重复调用
func (e *Etcd) Close() error {
	if e.Client == nil {
		return nil
	}
	err := e.Client.Close()
	e.Client = nil
	return err
}
