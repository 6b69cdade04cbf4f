package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	l zerolog.Logger
}

type Conf struct {
	Level   string
	Pretty  bool
	Service string
	Output  io.Writer
}

func New(conf Conf) *Logger {
	out := conf.Output
	if out == nil {
		out = os.Stdout
	}

	if conf.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(conf.Level)
	if err != nil || conf.Level == "" {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if conf.Service != "" {
		ctx = ctx.Str("service", conf.Service)
	}

	return &Logger{l: ctx.Logger()}
}

// Nop discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{l: zerolog.Nop()}
}

func (l *Logger) With(key, value string) *Logger {
	return &Logger{l: l.l.With().Str(key, value).Logger()}
}

func (l *Logger) Zerolog() zerolog.Logger {
	return l.l
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Error().Msgf(format, v...)
}

func (l *Logger) LogWarnf(format string, v ...any) {
	l.l.Warn().Msgf(format, v...)
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Info().Msgf(format, v...)
}

func (l *Logger) LogDebugf(format string, v ...any) {
	l.l.Debug().Msgf(format, v...)
}
