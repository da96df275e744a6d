package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/log/redact"
	"github.com/kochabx/docvault/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	hook   *redact.Hook
	closer io.Closer
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// RedactHook 返回脱敏钩子
func (l *Logger) RedactHook() *redact.Hook {
	return l.hook
}

// Close 释放文件 writer
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func newLogger(w io.Writer, opts ...Option) *Logger {
	l := &Logger{}

	// 先收集脱敏钩子，再决定最终的 writer
	for _, opt := range opts {
		opt(l)
	}
	if l.hook != nil {
		w = redact.NewWriter(w, l.hook)
	}

	l.Logger = zerolog.New(w).With().Timestamp().Logger()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// New 创建输出到控制台的 Logger
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWriter 创建输出到任意 writer 的 Logger
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// NewFile 创建输出到轮转文件的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	w, err := writer.File(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	l := newLogger(w, opts...)
	l.closer = w
	return l, nil
}

// NewMulti 创建同时输出到文件和控制台的 Logger
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	fw, err := writer.File(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	l := newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	l.closer = fw
	return l, nil
}

// FromConfig 按配置创建 Logger
func FromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	opts := []Option{WithLevel(ParseLevel(c.Level))}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if !c.NoRedact {
		opts = append(opts, WithRedact(redact.NewHook(redact.BuiltinRules()...)))
	}

	switch c.Output {
	case OutputFile:
		return NewFile(c.File, opts...)
	case OutputMulti:
		return NewMulti(c.File, opts...)
	default:
		return New(opts...), nil
	}
}
