package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Sources.GetTimeout())
	assert.Equal(t, 1.0, cfg.Sources.RequestsPerSecond)
	assert.False(t, cfg.Sources.StatutoryFallback)
	assert.Empty(t, cfg.Sources.Disabled)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(home, ".hu-holidays", "cache.db"), cfg.Cache.Path)
	assert.Equal(t, 24*time.Hour, cfg.Cache.GetTTL())
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Daemon.GetRefreshInterval())
	assert.Equal(t, 1, cfg.Daemon.YearsAhead)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
sources:
  timeout: 10s
  disabled: ["PontosIdo.com"]
  statutory_fallback: true
cache:
  backend: sqlite
  path: /tmp/hu.db
  ttl: 6h
server:
  addr: 127.0.0.1:9000
daemon:
  years_ahead: 2
log:
  level: debug
`)
	t.Setenv("HU_HOLIDAYS_CACHE_TTL", "90m")
	t.Setenv("HU_HOLIDAYS_SERVER_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Sources.GetTimeout())
	assert.Equal(t, []string{"PontosIdo.com"}, cfg.Sources.Disabled)
	assert.True(t, cfg.Sources.StatutoryFallback)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "/tmp/hu.db", cfg.Cache.Path)
	assert.Equal(t, 90*time.Minute, cfg.Cache.GetTTL(), "environment overrides file")
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Daemon.YearsAhead)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "cache:\n  backend: redis\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "cache.backend")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Sources: SourcesConfig{Timeout: "30s", RequestsPerSecond: 1},
			Cache:   CacheConfig{Backend: "memory", TTL: "24h"},
			Server:  ServerConfig{Addr: ":8000", ReadTimeout: "15s", WriteTimeout: "5m"},
			Daemon:  DaemonConfig{RefreshInterval: "12h", JitterPercent: 10, YearsAhead: 1},
			Log:     LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad timeout", func(c *Config) { c.Sources.Timeout = "soon" }, "sources.timeout"},
		{"zero timeout", func(c *Config) { c.Sources.Timeout = "0s" }, "sources.timeout"},
		{"negative rate", func(c *Config) { c.Sources.RequestsPerSecond = -1 }, "sources.requests_per_second"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }, "cache.backend"},
		{"sqlite without path", func(c *Config) { c.Cache.Backend = "sqlite" }, "cache.path"},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "-1h" }, "cache.ttl"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad refresh", func(c *Config) { c.Daemon.RefreshInterval = "daily" }, "daemon.refresh_interval"},
		{"jitter too large", func(c *Config) { c.Daemon.JitterPercent = 150 }, "daemon.jitter_percent"},
		{"too many years", func(c *Config) { c.Daemon.YearsAhead = 50 }, "daemon.years_ahead"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestDurationGetters_FallBack(t *testing.T) {
	var c Config
	assert.Equal(t, 30*time.Second, c.Sources.GetTimeout())
	assert.Equal(t, 24*time.Hour, c.Cache.GetTTL())
	assert.Equal(t, 15*time.Second, c.Server.GetReadTimeout())
	assert.Equal(t, 5*time.Minute, c.Server.GetWriteTimeout())
	assert.Equal(t, 12*time.Hour, c.Daemon.GetRefreshInterval())

	c.Cache.TTL = "garbage"
	assert.Equal(t, 24*time.Hour, c.Cache.GetTTL())
}
