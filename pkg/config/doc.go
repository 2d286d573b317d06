// Package config loads process configuration into tagged structs.
//
// Fields use caarlos0/env tags for environment variables and yaml tags for
// the optional file:
//
//	type Config struct {
//		Addr     string               `env:"ADDR" envDefault:":8080" yaml:"addr"`
//		Dispatch dispatch.Settings    `yaml:"dispatch"`
//		Database db.Config            `yaml:"database"`
//	}
//
//	var cfg Config
//	err := config.Load(&cfg, config.WithDotenv(), config.WithFile("dispatch.yaml"))
//
// Precedence, lowest first: envDefault, the YAML file, the environment.
package config
