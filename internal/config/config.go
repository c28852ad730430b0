package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
	CacheDriverNone   = "none"

	EventsDriverRedis = "redis"
	EventsDriverLog   = "log"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheDriver     string `mapstructure:"CACHE_DRIVER"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	EventsDriver string `mapstructure:"EVENTS_DRIVER"`
	EventsStream string `mapstructure:"EVENTS_STREAM"`
	EventsMaxLen int64  `mapstructure:"EVENTS_MAX_LEN"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`

	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

var defaults = map[string]interface{}{
	"PORT":                     "8000",
	"ENV":                      "development",
	"LOG_LEVEL":                "info",
	"STORAGE_DRIVER":           StorageDriverPostgres,
	"DB_MAX_CONNS":             20,
	"DB_MIN_CONNS":             2,
	"MIGRATIONS_DIR":           "migrations",
	"REDIS_URL":                "redis://localhost:6379/0",
	"CACHE_DRIVER":             CacheDriverRedis,
	"CACHE_TTL_SECONDS":        3600,
	"EVENTS_DRIVER":            EventsDriverRedis,
	"EVENTS_STREAM":            "clinic-events",
	"EVENTS_MAX_LEN":           10000,
	"CORS_ORIGINS":             "http://localhost:3000",
	"RATE_LIMIT_RPS":           100,
	"RATE_LIMIT_BURST":         200,
	"BODY_LIMIT":               "1M",
	"SHUTDOWN_TIMEOUT_SECONDS": 10,
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// Bind explicitly so Unmarshal sees variables that have no default.
	v.BindEnv("DATABASE_URL")

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.CacheDriver = strings.ToLower(strings.TrimSpace(cfg.CacheDriver))
	cfg.EventsDriver = strings.ToLower(strings.TrimSpace(cfg.EventsDriver))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// NeedsRedis reports whether any configured driver talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.CacheDriver == CacheDriverRedis || c.EventsDriver == EventsDriverRedis
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is %q", StorageDriverPostgres)
		}
		if c.DBMaxConns < 1 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("invalid pool size: DB_MIN_CONNS=%d DB_MAX_CONNS=%d", c.DBMinConns, c.DBMaxConns)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.StorageDriver)
	}

	switch c.CacheDriver {
	case CacheDriverRedis, CacheDriverMemory, CacheDriverNone:
	default:
		return fmt.Errorf("CACHE_DRIVER must be redis, memory or none, got %q", c.CacheDriver)
	}
	if c.CacheDriver != CacheDriverNone && c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.CacheTTLSeconds)
	}

	switch c.EventsDriver {
	case EventsDriverRedis:
		if c.EventsStream == "" {
			return fmt.Errorf("EVENTS_STREAM is required when EVENTS_DRIVER is %q", EventsDriverRedis)
		}
	case EventsDriverLog:
	default:
		return fmt.Errorf("EVENTS_DRIVER must be %q or %q, got %q", EventsDriverRedis, EventsDriverLog, c.EventsDriver)
	}

	if c.NeedsRedis() && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required for the redis cache or events driver")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive, got %d", c.ShutdownTimeoutSeconds)
	}
	return nil
}
