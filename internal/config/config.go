package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig is the MIMIC Postgres connection.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig is the latest-score cache connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config is the scoring service configuration, loaded from environment
// variables with defaults.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	Pipeline struct {
		// RunMode: "once" (batch then exit) or "interval" (recompute
		// every Interval seconds).
		RunMode  string
		Interval int

		// Workers computing stays in parallel. Stays are independent,
		// so this only bounds concurrency, never ordering.
		Workers int

		// Target table for the hourly scores.
		OutputTable string

		// Latest-score cache.
		CacheEnabled bool
		CacheTTL     int // seconds

		// Optional xlsx export of the result (empty = disabled).
		ExportPath string

		// Optional run-completion webhook (empty = disabled).
		WebhookURL string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "mimic")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Pipeline.RunMode = getEnv("SOFA_RUN_MODE", "once")
	if cfg.Pipeline.RunMode != "once" && cfg.Pipeline.RunMode != "interval" {
		return nil, fmt.Errorf("unsupported run mode: %s", cfg.Pipeline.RunMode)
	}
	cfg.Pipeline.Interval = getEnvInt("SOFA_RUN_INTERVAL", 3600)
	cfg.Pipeline.Workers = getEnvInt("SOFA_WORKERS", 4)
	if cfg.Pipeline.Workers < 1 {
		cfg.Pipeline.Workers = 1
	}
	cfg.Pipeline.OutputTable = getEnv("SOFA_OUTPUT_TABLE", "sofa_hourly")
	cfg.Pipeline.CacheEnabled = getEnv("SOFA_CACHE_ENABLED", "true") == "true"
	cfg.Pipeline.CacheTTL = getEnvInt("SOFA_CACHE_TTL", 86400)
	cfg.Pipeline.ExportPath = getEnv("SOFA_EXPORT_PATH", "")
	cfg.Pipeline.WebhookURL = getEnv("SOFA_WEBHOOK_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
