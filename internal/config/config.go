package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. HU_HOLIDAYS_CACHE_TTL
const EnvPrefix = "HU_HOLIDAYS"

// ErrInvalid marks a configuration that failed validation
var ErrInvalid = errors.New("invalid config")

// Config represents application configuration
type Config struct {
	Sources SourcesConfig `mapstructure:"sources"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
	Log     LogConfig     `mapstructure:"log"`
}

// SourcesConfig controls how upstream sites are fetched
type SourcesConfig struct {
	Timeout           string   `mapstructure:"timeout"`
	UserAgent         string   `mapstructure:"user_agent"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"` // per upstream host, 0 = unlimited
	Disabled          []string `mapstructure:"disabled"`            // source names to skip
	StatutoryFallback bool     `mapstructure:"statutory_fallback"`  // append the computed calendar as last resort
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "sqlite"
	Path    string `mapstructure:"path"`
	TTL     string `mapstructure:"ttl"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// DaemonConfig represents cache warmer configuration
type DaemonConfig struct {
	RefreshInterval string  `mapstructure:"refresh_interval"`
	JitterPercent   float64 `mapstructure:"jitter_percent"`
	YearsAhead      int     `mapstructure:"years_ahead"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources.timeout", "30s")
	v.SetDefault("sources.user_agent", "")
	v.SetDefault("sources.requests_per_second", 1.0)
	v.SetDefault("sources.disabled", []string{})
	v.SetDefault("sources.statutory_fallback", false)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.path", "$HOME/.hu-holidays/cache.db")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "5m")

	v.SetDefault("daemon.refresh_interval", "12h")
	v.SetDefault("daemon.jitter_percent", 10.0)
	v.SetDefault("daemon.years_ahead", 1)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file and environment.
// With an empty configPath a missing config file is not an error and defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hu-holidays")
		v.AddConfigPath("/etc/hu-holidays")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := positiveDuration(c.Sources.Timeout); err != nil {
		return invalid("sources.timeout", err)
	}
	if c.Sources.RequestsPerSecond < 0 {
		return errors.Wrap(ErrInvalid, "sources.requests_per_second must not be negative")
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "memory":
	case "sqlite":
		if c.Cache.Path == "" {
			return errors.Wrap(ErrInvalid, "cache.path is required for the sqlite backend")
		}
	default:
		return errors.Wrapf(ErrInvalid, "cache.backend must be 'memory' or 'sqlite', got '%s'", c.Cache.Backend)
	}
	if _, err := positiveDuration(c.Cache.TTL); err != nil {
		return invalid("cache.ttl", err)
	}

	if c.Server.Addr == "" {
		return errors.Wrap(ErrInvalid, "server.addr is required")
	}
	if _, err := positiveDuration(c.Server.ReadTimeout); err != nil {
		return invalid("server.read_timeout", err)
	}
	if _, err := positiveDuration(c.Server.WriteTimeout); err != nil {
		return invalid("server.write_timeout", err)
	}

	if _, err := positiveDuration(c.Daemon.RefreshInterval); err != nil {
		return invalid("daemon.refresh_interval", err)
	}
	if c.Daemon.JitterPercent < 0 || c.Daemon.JitterPercent > 100 {
		return errors.Wrap(ErrInvalid, "daemon.jitter_percent must be between 0 and 100")
	}
	if c.Daemon.YearsAhead < 0 || c.Daemon.YearsAhead > 10 {
		return errors.Wrap(ErrInvalid, "daemon.years_ahead must be between 0 and 10")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalid, "log.level: %v", err)
	}

	return nil
}

func invalid(key string, err error) error {
	return errors.Wrapf(ErrInvalid, "%s: %v", key, err)
}

func positiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Newf("must be positive, got %s", s)
	}
	return d, nil
}

func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetTimeout returns the per-request timeout for source fetches
func (c *SourcesConfig) GetTimeout() time.Duration {
	return durationOr(c.Timeout, 30*time.Second)
}

// GetTTL returns cache TTL duration
func (c *CacheConfig) GetTTL() time.Duration {
	return durationOr(c.TTL, 24*time.Hour)
}

// GetReadTimeout returns the server read timeout
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return durationOr(c.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout. Resolving a cold year
// may walk several slow sources, so it is generous.
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return durationOr(c.WriteTimeout, 5*time.Minute)
}

// GetRefreshInterval returns how often the warmer refreshes the cache
func (c *DaemonConfig) GetRefreshInterval() time.Duration {
	return durationOr(c.RefreshInterval, 12*time.Hour)
}

// ExpandEnvVars expands environment variables in path settings
func (c *Config) ExpandEnvVars() {
	c.Cache.Path = os.ExpandEnv(c.Cache.Path)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
