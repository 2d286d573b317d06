package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects level and output format. Tags follow pkg/config conventions.
type Config struct {
	Level  string       `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format string       `env:"LOG_FORMAT" envDefault:"json" yaml:"format"` // json or text
	Sentry SentryConfig `yaml:"sentry"`
}

// New creates a JSON-formatted logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(os.Stdout, "json", slog.LevelInfo), extractors...))
}

// NewFromConfig builds a logger from cfg. A configured Sentry DSN adds the Sentry fan-out.
func NewFromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	level := ParseLevel(cfg.Level)
	if cfg.Sentry.DSN != "" {
		return newWithSentry(cfg.Sentry, newHandler(os.Stdout, cfg.Format, level), extractors...)
	}
	return slog.New(NewLogHandlerDecorator(newHandler(os.Stdout, cfg.Format, level), extractors...))
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
