package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers used across the dispatch stack.

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func Component(name string) slog.Attr { return slog.String("component", name) }

func Controller(name string) slog.Attr { return slog.String("controller", name) }

func Action(name string) slog.Attr { return slog.String("action", name) }

func Status(code int) slog.Attr { return slog.Int("status", code) }

func Method(m string) slog.Attr { return slog.String("method", m) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }
