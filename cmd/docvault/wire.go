package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kochabx/docvault/app"
	"github.com/kochabx/docvault/core/auth/jwt"
	"github.com/kochabx/docvault/core/crypto/envelope"
	"github.com/kochabx/docvault/core/crypto/keypair"
	"github.com/kochabx/docvault/core/rate"
	"github.com/kochabx/docvault/document"
	"github.com/kochabx/docvault/log"
	"github.com/kochabx/docvault/metrics"
	middleware "github.com/kochabx/docvault/middleware/http"
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

const (
	startupTimeout = 30 * time.Second
	closeTimeout   = 5 * time.Second
)

// assembly 收集组件以及它们的启动、关闭函数
type assembly struct {
	cfg    *Config
	logger *log.Logger

	options []app.Option
	closers []func(context.Context) error
	checks  []transporthttp.Option
}

func (a *assembly) onStartup(name string, fn func(context.Context) error) {
	a.options = append(a.options, app.WithStartup(name, fn, startupTimeout))
}

func (a *assembly) onClose(name string, fn func(context.Context) error) {
	a.options = append(a.options, app.WithClose(name, fn, closeTimeout))
	a.closers = append(a.closers, fn)
}

// onCheck 注册健康检查依赖
func (a *assembly) onCheck(name string, fn func(context.Context) error) {
	a.checks = append(a.checks, transporthttp.WithHealthCheck(name, fn))
}

// release 组装失败时释放已创建的资源
func (a *assembly) release() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn().Err(err).Msg("failed to release resource")
		}
	}
}

// build 按配置组装应用
func build(ctx context.Context, cfg *Config, logger *log.Logger) (*app.Application, error) {
	a := &assembly{cfg: cfg, logger: logger}

	application, err := a.build(ctx)
	if err != nil {
		a.release()
		return nil, err
	}
	return application, nil
}

func (a *assembly) build(ctx context.Context) (*app.Application, error) {
	keys, err := a.keyManager(ctx)
	if err != nil {
		return nil, err
	}
	a.onStartup("keys", keys.EnsureKeyPairExists)

	codec := envelope.New(keys,
		envelope.WithOAEPHash(a.cfg.Keys.hash()),
		envelope.WithLegacyOAEPHashes(a.cfg.Keys.legacyHashes()...),
		envelope.WithMaxPlaintextSize(int(a.cfg.Document.MaxSize)),
	)

	blobs, err := a.blobStore(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := a.repository(ctx)
	if err != nil {
		return nil, err
	}
	publisher, err := a.publisher()
	if err != nil {
		return nil, err
	}

	prom := metrics.Prom
	recorder, err := metrics.NewDocument(prom.Registry())
	if err != nil {
		return nil, err
	}

	svc, err := document.NewService(codec, blobs, repo,
		document.WithConfig(a.cfg.Document),
		document.WithPublisher(publisher),
		document.WithRecorder(recorder),
		document.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	a.onClose("document", func(context.Context) error { return svc.Close() })

	limiter, err := a.uploadLimiter(ctx)
	if err != nil {
		return nil, err
	}

	auth, err := jwt.New(&a.cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Documents:     svc,
		Authenticator: auth,
		Logger:        a.logger,
		UploadLimiter: limiter,

		UploadLimitFailClosed: a.cfg.RateLimit.FailClosed,
		AllowOrigins:          a.cfg.HTTP.AllowOrigins,
	})
	serverOpts := append([]transporthttp.Option{
		transporthttp.WithName("docvault"),
		transporthttp.WithConfig(a.cfg.HTTP),
		transporthttp.WithRegistry(prom),
	}, a.checks...)
	server := transporthttp.NewServer(a.cfg.HTTP.Addr, router, serverOpts...)

	opts := append(a.options, app.WithServer(server))
	return app.New(opts...), nil
}

func (a *assembly) keyManager(ctx context.Context) (*keypair.Manager, error) {
	var store keypair.KeyStore
	switch a.cfg.Keys.Backend {
	case "etcd":
		e, err := etcd.New(ctx, &a.cfg.Etcd, etcd.WithLogger(a.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to connect etcd: %w", err)
		}
		a.onClose("etcd", func(context.Context) error { return e.Close() })
		a.onCheck("etcd", e.Ping)
		store = e.NewKeyStore(a.cfg.Keys.Prefix)
	default:
		store = keypair.NewFileStore(a.cfg.Keys.Dir)
	}

	return keypair.NewManager(store,
		keypair.WithPrivateKeyName(a.cfg.Keys.PrivateKeyName),
		keypair.WithPublicKeyName(a.cfg.Keys.PublicKeyName),
		keypair.WithBits(a.cfg.Keys.Bits),
		keypair.WithCache(a.cfg.Keys.Cache),
	)
}

func (a *assembly) blobStore(ctx context.Context) (document.BlobStore, error) {
	switch a.cfg.Blob.Backend {
	case "minio":
		client, err := minio.New(a.cfg.Blob.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		a.onStartup("minio", client.EnsureBucket)
		a.onClose("minio", func(context.Context) error { return client.Close() })
		a.onCheck("minio", client.Ping)
		return client, nil
	case "s3":
		store, err := s3.New(ctx, a.cfg.Blob.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 store: %w", err)
		}
		a.onStartup("s3", store.Ping)
		return store, nil
	default:
		return blob.New(a.cfg.Blob.Local)
	}
}

func (a *assembly) repository(ctx context.Context) (document.Repository, error) {
	switch a.cfg.Repository.Backend {
	case "mongo":
		client, err := mongo.New(ctx, &a.cfg.Repository.Mongo, mongo.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.onClose("mongo", func(context.Context) error { return client.Close() })
		a.onCheck("mongo", client.Ping)

		repo := mongo.NewDocumentRepository(client.Database(a.cfg.Repository.Mongo.Database))
		a.onStartup("mongo-indexes", repo.EnsureIndexes)
		return repo, nil
	default:
		driver, err := a.cfg.Repository.SQL.DriverConfig()
		if err != nil {
			return nil, err
		}
		client, err := db.New(driver,
			db.WithLogger(a.logger),
			db.WithSlowQuery(a.cfg.Repository.SQL.SlowQuery),
		)
		if err != nil {
			return nil, err
		}
		a.onClose("db", func(context.Context) error { return client.Close() })
		a.onCheck("db", client.Ping)

		repo := db.NewDocumentRepository(client.DB())
		a.onStartup("db-migrate", repo.AutoMigrate)
		return repo, nil
	}
}

func (a *assembly) publisher() (document.ActivityPublisher, error) {
	if !a.cfg.Kafka.Enabled {
		return document.NoopPublisher, nil
	}

	client, err := kafka.New(&a.cfg.Kafka.Config, kafka.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	a.onClose("kafka", func(context.Context) error { return client.Close() })

	return kafka.NewActivityPublisher(client), nil
}

// uploadLimiter 未启用时返回 nil，上传不受限制
func (a *assembly) uploadLimiter(ctx context.Context) (middleware.RateLimiter, error) {
	if !a.cfg.RateLimit.Enabled {
		return nil, nil
	}

	opts := []redis.Option{redis.WithLogger(a.logger)}
	if a.cfg.Redis.Debug {
		opts = append(opts, redis.WithDebug(a.cfg.Redis.SlowQuery))
	}
	if a.cfg.Redis.Instrument {
		opts = append(opts, redis.WithTracing(), redis.WithMetrics())
	}

	client, err := redis.New(ctx, &a.cfg.Redis.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	a.onClose("redis", func(context.Context) error { return client.Close() })
	// 放行模式下 redis 不可用不影响服务
	if a.cfg.RateLimit.FailClosed {
		a.onCheck("redis", client.Ping)
	}

	return rate.New(client.UniversalClient(), a.cfg.RateLimit.Config)
}
