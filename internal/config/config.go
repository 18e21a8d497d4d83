// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/libertrade/deskd/internal/gates"
	"github.com/libertrade/deskd/internal/regime"
	"github.com/libertrade/deskd/internal/store"
)

// Storage backend names.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// Global rate limit across all routes; a single-user service needs
	// only enough headroom for one impatient client.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Backend  string              `yaml:"backend"`
	Redis    store.RedisConfig   `yaml:"redis"`
	Postgres PostgresConfig      `yaml:"postgres"`
	Breaker  store.BreakerConfig `yaml:"breaker"`
}

// PostgresConfig holds the Postgres connection string.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// GatesConfig selects the whoop policy and overrides thresholds.
type GatesConfig struct {
	WhoopPolicy string        `yaml:"whoop_policy"`
	Thresholds  *gates.Config `yaml:"thresholds"`
}

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Gates   GatesConfig   `yaml:"gates"`
	Regime  regime.Bounds `yaml:"regime"`
	LogJSON bool          `yaml:"log_json"`
}

// Default returns the development configuration: memory store, default
// thresholds, local listener.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":8090",
			RateLimitPerSecond: 50,
			RateLimitBurst:     100,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Redis:   store.DefaultRedisConfig(),
			Breaker: store.DefaultBreakerConfig(),
		},
		Gates:  GatesConfig{WhoopPolicy: gates.PolicyRecoveryLenient},
		Regime: regime.DefaultBounds(),
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks backend and policy names.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("postgres backend requires storage.postgres.dsn")
	}
	if _, ok := gates.ThresholdsForPolicy(c.Gates.WhoopPolicy); !ok {
		return fmt.Errorf("unknown whoop policy %q", c.Gates.WhoopPolicy)
	}
	return nil
}

// GateConfig resolves the effective gate thresholds: explicit overrides win,
// otherwise the named policy over defaults.
func (c *Config) GateConfig() *gates.Config {
	if c.Gates.Thresholds != nil {
		return c.Gates.Thresholds
	}
	cfg := gates.DefaultConfig()
	if t, ok := gates.ThresholdsForPolicy(c.Gates.WhoopPolicy); ok {
		cfg.Whoop = t
	}
	return cfg
}
