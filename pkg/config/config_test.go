package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/config"
)

type server struct {
	Addr    string        `env:"ADDR" envDefault:":8080" yaml:"addr"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s" yaml:"timeout"`
}

type appConfig struct {
	Name    string   `env:"NAME" envDefault:"dispatch" yaml:"name"`
	Methods []string `env:"METHODS" envSeparator:"," yaml:"methods"`
	Debug   bool     `env:"DEBUG" yaml:"debug"`
	Server  server   `yaml:"server"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		var cfg appConfig
		require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{})))
		assert.Equal(t, "dispatch", cfg.Name)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.False(t, cfg.Debug)
	})

	t.Run("file overrides defaults and env overrides file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "dispatch.yaml", "name: notes\nmethods: [get, post]\nserver:\n  addr: \":9000\"\n")
		var cfg appConfig
		require.NoError(t, config.Load(&cfg,
			config.WithFile(path),
			config.WithEnvironment(map[string]string{"ADDR": ":7000"}),
		))
		assert.Equal(t, "notes", cfg.Name)
		assert.Equal(t, []string{"get", "post"}, cfg.Methods)
		assert.Equal(t, ":7000", cfg.Server.Addr)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		var cfg appConfig
		require.NoError(t, config.Load(&cfg,
			config.WithPrefix("APP_"),
			config.WithEnvironment(map[string]string{"APP_METHODS": "get,options", "METHODS": "put"}),
		))
		assert.Equal(t, []string{"get", "options"}, cfg.Methods)
	})

	t.Run("unknown file keys fail", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "bad.yaml", "nmae: typo\n")
		var cfg appConfig
		require.Error(t, config.Load(&cfg, config.WithFile(path), config.WithEnvironment(map[string]string{})))
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()

		var cfg appConfig
		require.Error(t, config.Load(&cfg, config.WithFile(filepath.Join(t.TempDir(), "none.yaml"))))
	})

	t.Run("empty file keeps env values", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "empty.yaml", "")
		var cfg appConfig
		require.NoError(t, config.Load(&cfg, config.WithFile(path), config.WithEnvironment(map[string]string{})))
		assert.Equal(t, "dispatch", cfg.Name)
	})

	t.Run("invalid target", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, config.Load(nil), config.ErrInvalidTarget)
		require.ErrorIs(t, config.Load(appConfig{}), config.ErrInvalidTarget)
	})
}

func TestLoadDotenv(t *testing.T) {
	path := writeFile(t, ".env", "DISPATCH_TEST_DOTENV=from-file\n")
	t.Cleanup(func() { _ = os.Unsetenv("DISPATCH_TEST_DOTENV") })

	var cfg struct {
		Value string `env:"DISPATCH_TEST_DOTENV"`
	}
	require.NoError(t, config.Load(&cfg, config.WithDotenv(path, filepath.Join(t.TempDir(), "missing.env"))))
	assert.Equal(t, "from-file", cfg.Value)
}
