package log

import (
	"github.com/rs/zerolog"
)

// G 全局日志，进程启动后由 SetGlobalLogger 替换为配置生成的实例
var G = New()

func SetGlobalLogger(logger *Logger) {
	G = logger
}

func Debug() *zerolog.Event {
	return G.Debug()
}

func Info() *zerolog.Event {
	return G.Info()
}

func Warn() *zerolog.Event {
	return G.Warn()
}

// Error 附带堆栈，配合 Err 使用
func Error() *zerolog.Event {
	return G.Error().Stack()
}
