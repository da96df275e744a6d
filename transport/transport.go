// Package transport 定义由 app 管理生命周期的服务端
package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/kochabx/docvault/core/validator"
)

// Server 由 app.Application 启动和关闭
type Server interface {
	// Run 阻塞直到服务停止
	Run() error
	Shutdown(context.Context) error
}

// CheckAddress 校验 host:port 形式的监听地址，host 可以为空或 IP
func CheckAddress(addr string) error {
	if host, port, err := net.SplitHostPort(addr); err == nil && net.ParseIP(host) != nil {
		addr = net.JoinHostPort("", port)
	}
	if err := validator.Validate.Var(addr, "hostname_port"); err != nil {
		return fmt.Errorf("invalid listen address %q", addr)
	}
	return nil
}
