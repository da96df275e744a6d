package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/docvault/log"
)

// gormLogger 把 GORM 日志写入 log.Logger
type gormLogger struct {
	logger *log.Logger
	level  logger.LogLevel
	slow   time.Duration
}

var _ logger.Interface = (*gormLogger)(nil)

func newGormLogger(l *log.Logger, level logger.LogLevel, slow time.Duration) *gormLogger {
	if level == 0 {
		level = logger.Silent
	}
	return &gormLogger{logger: l, level: level, slow: slow}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	n := *l
	n.level = level
	return &n
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.logger.Info().Msgf(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.logger.Warn().Msgf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.logger.Error().Msgf(msg, args...)
	}
}

// Trace 慢查询在 silent 以外的级别都会记录，record not found 不算错误
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.logger.Error().Err(err).Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("sql failed")
	case l.slow > 0 && elapsed > l.slow:
		sql, rows := fc()
		l.logger.Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Dur("threshold", l.slow).Msg("slow sql")
	case l.level >= logger.Info:
		sql, rows := fc()
		l.logger.Debug().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("sql")
	}
}
