package main

import (
	"time"

	"github.com/dmitrymomot/dispatch"
	"github.com/dmitrymomot/dispatch/pkg/db"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/redis"
)

// Config is loaded from config.yaml (optional), .env and the environment.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080" yaml:"addr"`
	Root            string        `env:"ROOT" envDefault:"/app" yaml:"root"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000" yaml:"cors_origins"`

	Log        logger.Config               `yaml:"log"`
	Dispatcher dispatch.DispatcherSettings `yaml:"dispatcher"`
	Session    dispatch.SessionSettings    `yaml:"session"`
	Database   db.Config                   `yaml:"database"` // empty URL keeps notes in memory
	Redis      redis.Config                `yaml:"redis"`
}
