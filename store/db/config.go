package db

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

var (
	ErrUnsupportedDriver = errors.New("db: unsupported driver")
	ErrInvalidConfig     = errors.New("db: invalid config")
)

// Driver 数据库驱动类型
type Driver string

const (
	// DriverMySQL MySQL 驱动
	DriverMySQL Driver = "mysql"
	// DriverPostgres PostgreSQL 驱动
	DriverPostgres Driver = "postgres"
	// DriverSQLite SQLite 驱动
	DriverSQLite Driver = "sqlite"
)

// String 返回驱动名称
func (d Driver) String() string {
	return string(d)
}

// LogLevel GORM 日志级别
type LogLevel = logger.LogLevel

const (
	LogLevelSilent = logger.Silent
	LogLevelError  = logger.Error
	LogLevelWarn   = logger.Warn
	LogLevelInfo   = logger.Info
)

// PoolConfig 连接池配置
type PoolConfig struct {
	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int `json:"maxIdleConns" mapstructure:"maxIdleConns" default:"10"`

	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `json:"maxOpenConns" mapstructure:"maxOpenConns" default:"100"`

	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"connMaxLifetime" default:"1h"`

	// ConnMaxIdleTime 连接最大空闲时间
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"connMaxIdleTime" default:"10m"`
}

// DriverConfig 驱动配置接口
type DriverConfig interface {
	// Driver 返回驱动类型
	Driver() Driver

	// DSN 返回数据源名称
	DSN() string

	// Pool 返回连接池配置
	Pool() *PoolConfig

	// Init 初始化配置（应用默认值）
	Init() error

	// LogLevel 返回日志级别
	LogLevel() LogLevel
}

// ParseLogLevel 未知级别视为 silent
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	default:
		return LogLevelSilent
	}
}

// Config 按驱动选择具体配置，用于从配置文件加载
type Config struct {
	Driver Driver `json:"driver" mapstructure:"driver" default:"sqlite" validate:"oneof=sqlite postgres mysql"`
	// SlowQuery 超过该耗时的 SQL 记为 warn
	SlowQuery time.Duration  `json:"slowQuery" mapstructure:"slowQuery" default:"200ms"`
	SQLite    SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig `json:"postgres" mapstructure:"postgres"`
	MySQL     MySQLConfig    `json:"mysql" mapstructure:"mysql"`
}

// DriverConfig 返回所选驱动的配置
func (c *Config) DriverConfig() (DriverConfig, error) {
	switch c.Driver {
	case DriverSQLite, "":
		return &c.SQLite, nil
	case DriverPostgres:
		return &c.Postgres, nil
	case DriverMySQL:
		return &c.MySQL, nil
	default:
		return nil, ErrUnsupportedDriver
	}
}
