// Package config loads and validates the application configuration.
//
// Configuration is a single typed struct decoded from TOML. Every field has
// a documented default; Load applies defaults first, overlays the file, then
// environment overrides, and validates the result. Configuration errors fail
// fast at startup rather than surfacing as odd behavior later.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	GitHub GitHubConfig `toml:"github"`
	Retry  RetryConfig  `toml:"retry"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// GitHubConfig holds API connection settings.
type GitHubConfig struct {
	// BaseURL is the REST API root. Override for GitHub Enterprise.
	BaseURL string `toml:"base_url"`

	// Token authenticates API calls. The GITHUB_TOKEN environment
	// variable takes precedence; keep tokens out of config files.
	Token string `toml:"token"`

	// Owner and Repo are the default repository coordinates used when a
	// command does not name a repository explicitly.
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
}

// RetryConfig tunes the backoff retry wrapper.
type RetryConfig struct {
	MaxRetries   int      `toml:"max_retries"`
	InitialDelay duration `toml:"initial_delay"`
	MaxDelay     duration `toml:"max_delay"`
	Multiplier   float64  `toml:"multiplier"`
}

// CacheConfig selects the durable store backend for persistent tiers.
type CacheConfig struct {
	// Backend is one of "file", "memory", "redis", "mongo", "none".
	Backend string `toml:"backend"`

	// Dir is the file backend's root directory. Empty selects the XDG
	// cache directory.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig holds Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig holds MongoDB connection settings for the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// SessionIdleTimeout is how long an idle session keeps its cache
	// partition before it is evicted.
	SessionIdleTimeout duration `toml:"session_idle_timeout"`
}

// duration decodes TOML strings like "2s" or "10m" into a time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
		},
		Retry: RetryConfig{
			MaxRetries:   3,
			InitialDelay: duration{2 * time.Second},
			MaxDelay:     duration{60 * time.Second},
			Multiplier:   2,
		},
		Cache: CacheConfig{
			Backend: "file",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "ghwiki:",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "ghwiki",
				Collection: "cache",
			},
		},
		Server: ServerConfig{
			Addr:               ":8080",
			SessionIdleTimeout: duration{30 * time.Minute},
		},
	}
}

// Load reads the configuration file at path, overlaying it onto the
// defaults. An empty path or a missing file yields the defaults. The
// GITHUB_TOKEN environment variable overrides the file's token. The result
// is validated before it is returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
			}
		}
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors that should fail startup.
func (c Config) Validate() error {
	if c.GitHub.BaseURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "github.base_url cannot be empty")
	}
	if c.Retry.MaxRetries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "retry.max_retries must be >= 0, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.InitialDelay.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "retry.initial_delay must be > 0, got %v", c.Retry.InitialDelay.Duration)
	}
	if c.Retry.MaxDelay.Duration < c.Retry.InitialDelay.Duration {
		return errors.New(errors.ErrCodeInvalidConfig, "retry.max_delay %v is below retry.initial_delay %v", c.Retry.MaxDelay.Duration, c.Retry.InitialDelay.Duration)
	}
	if c.Retry.Multiplier < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "retry.multiplier must be >= 1, got %v", c.Retry.Multiplier)
	}

	switch c.Cache.Backend {
	case "file", "memory", "none":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr cannot be empty with the redis backend")
		}
	case "mongo":
		if c.Cache.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo.uri cannot be empty with the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of file, memory, redis, mongo, none; got %q", c.Cache.Backend)
	}

	if c.Server.SessionIdleTimeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_idle_timeout must be > 0, got %v", c.Server.SessionIdleTimeout.Duration)
	}
	return nil
}

// Durations returns the retry delays as plain durations for the retry
// policy.
func (c RetryConfig) Durations() (initial, max time.Duration) {
	return c.InitialDelay.Duration, c.MaxDelay.Duration
}
