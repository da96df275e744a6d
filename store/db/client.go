package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kochabx/docvault/log"
)

// Client 持有 GORM 连接和底层连接池
type Client struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	driver Driver
}

type options struct {
	logger         *log.Logger
	connectTimeout time.Duration
	slowQuery      time.Duration
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithConnectTimeout 首次 ping 的超时，默认 10s
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithSlowQuery 超过 d 的 SQL 以 warn 级别记录
func WithSlowQuery(d time.Duration) Option {
	return func(o *options) {
		o.slowQuery = d
	}
}

// New 打开连接、配置连接池并 ping 一次
func New(cfg DriverConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	o := &options{logger: log.G, connectTimeout: 10 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(o.logger, cfg.LogLevel(), o.slowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Driver(), err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	pool := cfg.Pool()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	c := &Client{db: gdb, sqlDB: sqlDB, driver: cfg.Driver()}

	ctx, cancel := context.WithTimeout(context.Background(), o.connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping %s: %w", cfg.Driver(), err)
	}

	o.logger.Debug().Str("driver", cfg.Driver().String()).Msg("database connected")
	return c, nil
}

func dialect(cfg DriverConfig) (gorm.Dialector, error) {
	switch cfg.Driver() {
	case DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

func (c *Client) DB() *gorm.DB {
	return c.db
}

func (c *Client) Driver() Driver {
	return c.driver
}

func (c *Client) Ping(ctx context.Context) error {
	return c.sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.sqlDB.Close()
}
