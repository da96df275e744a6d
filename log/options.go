package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/docvault/log/redact"
)

// Option Logger 选项
type Option func(*Logger)

// WithLevel 设置日志级别
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.Level(level)
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Caller().Logger()
	}
}

// WithRedact 设置脱敏钩子
func WithRedact(hook *redact.Hook) Option {
	return func(l *Logger) {
		l.hook = hook
	}
}
