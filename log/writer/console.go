package writer

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Console 输出到 stderr，级别对齐显示，非终端时不输出颜色
func Console() zerolog.ConsoleWriter {
	return ConsoleTo(os.Stderr)
}

func ConsoleTo(out io.Writer) zerolog.ConsoleWriter {
	f, ok := out.(*os.File)
	color := ok && isatty.IsTerminal(f.Fd())
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: time.DateTime,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.CallerFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			s, _ := i.(string)
			return "[" + padLevel(s) + "]"
		},
	}
}

func padLevel(level string) string {
	const width = 5
	for len(level) < width {
		level += " "
	}
	return level
}
