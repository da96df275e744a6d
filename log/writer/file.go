package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	RotateSize = "size"
	RotateTime = "time"
)

// FileConfig 日志文件配置，size 模式使用 lumberjack，time 模式使用 rotatelogs
type FileConfig struct {
	Dir    string `json:"dir" mapstructure:"dir" default:"log"`
	Name   string `json:"name" mapstructure:"name" default:"docvault.log"`
	Rotate string `json:"rotate" mapstructure:"rotate" default:"size" validate:"oneof=size time"`

	// size 模式
	MaxSizeMB  int  `json:"max_size_mb" mapstructure:"max_size_mb" default:"100"`
	MaxBackups int  `json:"max_backups" mapstructure:"max_backups" default:"5"`
	Compress   bool `json:"compress" mapstructure:"compress"`

	// 两种模式共用，旧文件的保留时间
	MaxAge time.Duration `json:"max_age" mapstructure:"max_age" default:"720h"`

	// time 模式
	Interval time.Duration `json:"interval" mapstructure:"interval" default:"1h"`
}

func (c *FileConfig) path() string {
	return filepath.Join(c.Dir, c.Name)
}

// File 创建轮转文件 writer，返回值实现 io.Closer
func File(c FileConfig) (io.WriteCloser, error) {
	switch c.Rotate {
	case RotateSize, "":
		return &lumberjack.Logger{
			Filename:   c.path(),
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     int(c.MaxAge / (24 * time.Hour)),
			Compress:   c.Compress,
		}, nil
	case RotateTime:
		ext := filepath.Ext(c.Name)
		pattern := filepath.Join(c.Dir, c.Name[:len(c.Name)-len(ext)]+".%Y%m%d%H%M"+ext)
		w, err := rotatelogs.New(pattern,
			rotatelogs.WithLinkName(c.path()),
			rotatelogs.WithMaxAge(c.MaxAge),
			rotatelogs.WithRotationTime(c.Interval),
		)
		if err != nil {
			return nil, fmt.Errorf("rotatelogs: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode %q", c.Rotate)
	}
}
