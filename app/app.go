// Package app 管理进程生命周期：启动前准备、服务运行、信号处理和资源释放
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/docvault/log"
	"github.com/kochabx/docvault/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrHookPanic      = errors.New("lifecycle hook panicked")
)

const (
	defaultShutdownTimeout = 30 * time.Second
	defaultCloseTimeout    = 30 * time.Second
)

// hook 启动或关闭阶段执行的函数，timeout 为 0 表示不限制
type hook struct {
	name    string
	fn      func(context.Context) error
	timeout time.Duration
}

// run 执行函数并把 panic 转换为错误
func (h hook) run(parent context.Context) (err error) {
	ctx, cancel := parent, context.CancelFunc(func() {})
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, h.timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("hook", h.name).Msg("lifecycle hook panicked")
				done <- ErrHookPanic
			}
		}()
		done <- h.fn(ctx)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", h.name, err)
	}
	return nil
}

// Application 按注册顺序执行启动函数，运行服务器，退出时逆序释放资源
type Application struct {
	ctx    context.Context
	cancel context.CancelFunc

	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal

	servers  []transport.Server
	startups []hook
	closers  []hook

	mu      sync.Mutex
	started bool
}

type Option func(*Application)

// WithContext 设置根上下文，取消时应用退出
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

// WithShutdownTimeout 服务器优雅关闭的等待时间
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 关闭函数未指定超时时使用的默认值
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = append([]os.Signal(nil), signals...)
		}
	}
}

func WithServer(server transport.Server) Option {
	return func(app *Application) {
		if server != nil {
			app.servers = append(app.servers, server)
		}
	}
}

// WithStartup 服务器启动前执行，任一失败则不启动
func WithStartup(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if fn == nil {
			log.Warn().Str("hook", name).Msg("nil startup function ignored")
			return
		}
		app.startups = append(app.startups, hook{name: name, fn: fn, timeout: timeout})
	}
}

// WithClose 退出时执行，后注册的先执行
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if fn == nil {
			log.Warn().Str("hook", name).Msg("nil close function ignored")
			return
		}
		app.closers = append(app.closers, hook{name: name, fn: fn, timeout: timeout})
	}
}

func New(options ...Option) *Application {
	app := &Application{
		shutdownTimeout: defaultShutdownTimeout,
		closeTimeout:    defaultCloseTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT},
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		if opt != nil {
			opt(app)
		}
	}

	// 关闭函数超时为 0 时使用默认值，避免退出时无限等待
	for i := range app.closers {
		if app.closers[i].timeout == 0 {
			app.closers[i].timeout = app.closeTimeout
		}
	}
	return app
}

// Start 阻塞直到收到信号、上下文取消或某个服务器失败
func (app *Application) Start() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	app.mu.Unlock()

	defer app.release()

	for _, h := range app.startups {
		if err := h.run(app.ctx); err != nil {
			log.Error().Err(err).Str("hook", h.name).Msg("startup function failed")
			return fmt.Errorf("startup %w", err)
		}
		log.Debug().Str("hook", h.name).Msg("startup function completed")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, app.signals...)
	defer signal.Stop(sigCh)

	eg, ctx := errgroup.WithContext(app.ctx)
	for _, server := range app.servers {
		eg.Go(func() error {
			if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 触发优雅退出
func (app *Application) Stop() {
	app.cancel()
}

// release 逆序执行关闭函数，单个失败不影响其余
func (app *Application) release() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		h := app.closers[i]
		if err := h.run(context.Background()); err != nil {
			log.Error().Err(err).Str("hook", h.name).Msg("close function failed")
		}
	}
}

// Info 返回应用状态
func (app *Application) Info() Info {
	app.mu.Lock()
	defer app.mu.Unlock()

	return Info{
		Started:      app.started,
		ServerCount:  len(app.servers),
		StartupCount: len(app.startups),
		CloseCount:   len(app.closers),
	}
}

type Info struct {
	Started      bool `json:"started"`
	ServerCount  int  `json:"server_count"`
	StartupCount int  `json:"startup_count"`
	CloseCount   int  `json:"close_count"`
}
