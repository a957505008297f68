package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// AppName identifies this service in logs and database sessions.
const AppName = "bookstore"

// NewLogger creates the process logger on stdout. Every entry carries the
// application name; debug level also records the calling file and line.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg LoggerConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("app", AppName)
	if level == zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}
