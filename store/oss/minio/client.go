package minio

import (
	"context"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/document"
)

// Client 把密文保存在单个存储桶中
type Client struct {
	config Config
	client *minio.Client
}

var _ document.BlobStore = (*Client)(nil)

type Option func(*minio.Options)

// WithTransport 替换默认的 HTTP transport，测试或自定义 TLS 时使用
func WithTransport(rt http.RoundTripper) Option {
	return func(o *minio.Options) {
		o.Transport = rt
	}
}

// New 只创建客户端，不访问服务端，桶检查放在 EnsureBucket
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	mo := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	for _, opt := range opts {
		opt(mo)
	}

	client, err := minio.New(cfg.Endpoint, mo)
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	return &Client{config: cfg, client: client}, nil
}

// Bucket 返回实际使用的存储桶
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// EnsureBucket 检查存储桶，允许时自动创建
func (c *Client) EnsureBucket(ctx context.Context) error {
	bucket := c.config.Bucket
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio: check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if !c.config.CreateBucket {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}

	err = c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region})
	if err != nil {
		// 多个实例同时启动时对方可能先建好
		if code := minio.ToErrorResponse(err).Code; code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("minio: create bucket %s: %w", bucket, err)
	}
	return nil
}

// Ping 存储桶不存在时同样视为不可用
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("minio: ping: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, c.config.Bucket)
	}
	return nil
}

// Close minio.Client 没有需要释放的资源
func (c *Client) Close() error {
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.RequestTimeout)
}
