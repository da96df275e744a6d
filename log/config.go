package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/docvault/log/writer"
)

// Output 日志输出方式
type Output string

const (
	OutputConsole Output = "console"
	OutputFile    Output = "file"
	OutputMulti   Output = "multi"
)

// Config 日志配置
type Config struct {
	Level    string     `json:"level" mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Output   Output     `json:"output" mapstructure:"output" default:"console" validate:"oneof=console file multi"`
	Caller   bool       `json:"caller" mapstructure:"caller"`
	NoRedact bool       `json:"no_redact" mapstructure:"no_redact"`
	File     FileConfig `json:"file" mapstructure:"file"`
}

// FileConfig 日志文件配置
type FileConfig = writer.FileConfig

// ParseLevel 解析日志级别，无法识别时返回 info
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
