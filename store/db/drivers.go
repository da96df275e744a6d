package db

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/kochabx/docvault/core/tag"
)

// Common 各驱动共用的连接池和日志配置
type Common struct {
	PoolConfig `json:"pool" mapstructure:"pool"`
	Level      string `json:"level" mapstructure:"level" default:"silent" validate:"oneof=silent error warn info"`

	initialized bool
}

func (b *Common) Pool() *PoolConfig {
	return &b.PoolConfig
}

func (b *Common) LogLevel() LogLevel {
	return ParseLogLevel(b.Level)
}

func (b *Common) init(c any) error {
	if b.initialized {
		return nil
	}
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

// SQLiteConfig 单文件数据库，默认单连接
type SQLiteConfig struct {
	FilePath    string `json:"filePath" mapstructure:"filePath" default:"./docvault.db"`
	JournalMode string `json:"journalMode" mapstructure:"journalMode" default:"WAL"`
	BusyTimeout int    `json:"busyTimeout" mapstructure:"busyTimeout" default:"5000"`
	SyncMode    string `json:"syncMode" mapstructure:"syncMode" default:"NORMAL"`

	Common `mapstructure:",squash"`
}

func (c *SQLiteConfig) Driver() Driver { return DriverSQLite }

func (c *SQLiteConfig) Init() error {
	if err := c.init(c); err != nil {
		return err
	}
	// 写操作由 sqlite 串行化，多连接只会带来 SQLITE_BUSY
	c.MaxOpenConns, c.MaxIdleConns = 1, 1
	return nil
}

func (c *SQLiteConfig) DSN() string {
	return fmt.Sprintf("file:%s?_journal_mode=%s&_busy_timeout=%d&_synchronous=%s&_foreign_keys=true",
		c.FilePath, c.JournalMode, c.BusyTimeout, c.SyncMode)
}

// PostgresConfig PostgreSQL 连接配置
type PostgresConfig struct {
	Host           string        `json:"host" mapstructure:"host" default:"localhost"`
	Port           int           `json:"port" mapstructure:"port" default:"5432"`
	User           string        `json:"user" mapstructure:"user" default:"postgres"`
	Password       string        `json:"password" mapstructure:"password"`
	Database       string        `json:"database" mapstructure:"database" default:"docvault"`
	SSLMode        string        `json:"sslmode" mapstructure:"sslmode" default:"prefer" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	TimeZone       string        `json:"timezone" mapstructure:"timezone" default:"UTC"`
	ConnectTimeout time.Duration `json:"connectTimeout" mapstructure:"connectTimeout" default:"10s"`

	Common `mapstructure:",squash"`
}

func (c *PostgresConfig) Driver() Driver { return DriverPostgres }

func (c *PostgresConfig) Init() error { return c.init(c) }

// DSN keyword/value 形式，值统一加引号
func (c *PostgresConfig) DSN() string {
	kv := [][2]string{
		{"host", c.Host},
		{"port", strconv.Itoa(c.Port)},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"sslmode", c.SSLMode},
		{"TimeZone", c.TimeZone},
		{"connect_timeout", strconv.Itoa(int(c.ConnectTimeout / time.Second))},
	}
	parts := make([]string, 0, len(kv))
	for _, p := range kv {
		if p[1] == "" {
			continue
		}
		v := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(p[1])
		parts = append(parts, p[0]+"='"+v+"'")
	}
	return strings.Join(parts, " ")
}

// MySQLConfig MySQL 连接配置
type MySQLConfig struct {
	Host      string        `json:"host" mapstructure:"host" default:"localhost"`
	Port      int           `json:"port" mapstructure:"port" default:"3306"`
	User      string        `json:"user" mapstructure:"user" default:"root"`
	Password  string        `json:"password" mapstructure:"password"`
	Database  string        `json:"database" mapstructure:"database" default:"docvault"`
	Charset   string        `json:"charset" mapstructure:"charset" default:"utf8mb4"`
	Collation string        `json:"collation" mapstructure:"collation" default:"utf8mb4_unicode_ci"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout" default:"10s"`

	Common `mapstructure:",squash"`
}

func (c *MySQLConfig) Driver() Driver { return DriverMySQL }

func (c *MySQLConfig) Init() error { return c.init(c) }

// DSN 时间统一按 UTC 解析
func (c *MySQLConfig) DSN() string {
	m := mysql.NewConfig()
	m.User = c.User
	m.Passwd = c.Password
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	m.DBName = c.Database
	m.Collation = c.Collation
	m.Timeout = c.Timeout
	m.ParseTime = true
	m.Loc = time.UTC
	m.Params = map[string]string{"charset": c.Charset}
	return m.FormatDSN()
}
