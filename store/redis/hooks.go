package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/docvault/log"
)

// commandLogger 记录命令名和耗时
//
// 参数里有限流 key，其中带所有者 id，因此不记录参数
type commandLogger struct {
	logger *log.Logger
	slow   time.Duration
}

var _ redis.Hook = (*commandLogger)(nil)

func (h *commandLogger) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Warn().Err(err).Str("addr", addr).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *commandLogger) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.log(cmd.FullName(), 1, time.Since(start), err)
		return err
	}
}

func (h *commandLogger) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		name := "pipeline"
		if len(cmds) > 0 {
			name = cmds[0].FullName()
		}
		h.log(name, len(cmds), time.Since(start), err)
		return err
	}
}

func (h *commandLogger) log(name string, n int, d time.Duration, err error) {
	e := h.logger.Debug()
	switch {
	case err != nil && err != redis.Nil:
		e = h.logger.Warn().Err(err)
	case h.slow > 0 && d > h.slow:
		e = h.logger.Warn().Dur("threshold", h.slow)
	}
	e.Str("cmd", name).Int("count", n).Dur("duration", d).Msg("redis")
}
