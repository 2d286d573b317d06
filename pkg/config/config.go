package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTarget is returned when the target is not a non-nil struct pointer.
var ErrInvalidTarget = errors.New("config: target must be a non-nil pointer to a struct")

// noDefaults is a tag name no field uses; parsing with it skips envDefault.
const noDefaults = "-"

type options struct {
	file    string
	dotenv  []string
	prefix  string
	environ map[string]string
}

// Option configures Load.
type Option func(*options)

// WithFile overlays a YAML file. A missing file is an error.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithDotenv loads .env files into the process environment before parsing.
// Missing files are skipped. Variables already set are not overwritten.
func WithDotenv(paths ...string) Option {
	return func(o *options) {
		if len(paths) == 0 {
			paths = []string{".env"}
		}
		o.dotenv = append(o.dotenv, paths...)
	}
}

// WithPrefix prepends prefix to every env tag.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment reads variables from m instead of the process environment.
func WithEnvironment(m map[string]string) Option {
	return func(o *options) { o.environ = m }
}

// Load fills target from, in increasing precedence: envDefault tags, the
// YAML file and the environment.
func Load(target any, opts ...Option) error {
	if v := reflect.ValueOf(target); v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	for _, p := range o.dotenv {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}

	envOpts := env.Options{Prefix: o.prefix, Environment: o.environ}
	if err := parseEnv(target, envOpts); err != nil {
		return err
	}
	if o.file == "" {
		return nil
	}

	if err := decodeFile(o.file, target); err != nil {
		return err
	}
	envOpts.DefaultValueTagName = noDefaults
	return parseEnv(target, envOpts)
}

// MustLoad is Load that panics on error.
func MustLoad(target any, opts ...Option) {
	if err := Load(target, opts...); err != nil {
		panic(err)
	}
}

func parseEnv(target any, opts env.Options) error {
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

func decodeFile(path string, target any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}
