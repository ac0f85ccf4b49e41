package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends for student records.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
)

// Idempotency backends for replayable create responses.
const (
	IdempotencyMemory   = "memory"
	IdempotencyPostgres = "postgres"
	IdempotencyRedis    = "redis"
)

// Config is the process configuration, read from the environment by LoadFromEnv.
type Config struct {
	Port string
	// MetricsAddr, when set, serves /metrics on a separate listener instead of the API router.
	MetricsAddr string

	StorageBackend string
	DatabaseURL    string
	MySQLDSN       string

	IdempotencyBackend string
	IdempotencyTTL     time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int

	LogLevel  string
	LogFormat string

	// SeedData creates sample students on startup when the store is empty.
	SeedData bool

	ShutdownTimeout time.Duration
}

func LoadFromEnv() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	// Defaults keep `go run ./cmd/api` working with no environment at all.
	cfg := Config{
		Port:               get("PORT", "8080"),
		MetricsAddr:        get("METRICS_ADDR", ""),
		StorageBackend:     strings.ToLower(get("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:        get("DATABASE_URL", ""),
		MySQLDSN:           get("MYSQL_DSN", ""),
		IdempotencyBackend: strings.ToLower(get("IDEMPOTENCY_BACKEND", "")),
		IdempotencyTTL:     24 * time.Hour,
		RedisAddr:          get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getenv("REDIS_PASSWORD"),
		LogLevel:           get("LOG_LEVEL", "info"),
		LogFormat:          get("LOG_FORMAT", "json"),
		ShutdownTimeout:    10 * time.Second,
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case StorageMySQL:
		if cfg.MySQLDSN == "" {
			return Config{}, fmt.Errorf("MYSQL_DSN is required when STORAGE_BACKEND=mysql")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be one of memory|postgres|mysql, got %q", cfg.StorageBackend)
	}

	// Idempotency records follow the student store unless told otherwise.
	if cfg.IdempotencyBackend == "" {
		cfg.IdempotencyBackend = IdempotencyMemory
		if cfg.StorageBackend == StoragePostgres {
			cfg.IdempotencyBackend = IdempotencyPostgres
		}
	}
	switch cfg.IdempotencyBackend {
	case IdempotencyMemory, IdempotencyRedis:
	case IdempotencyPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when IDEMPOTENCY_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("IDEMPOTENCY_BACKEND must be one of memory|postgres|redis, got %q", cfg.IdempotencyBackend)
	}

	if v := getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("IDEMPOTENCY_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.IdempotencyTTL = d
	}
	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("REDIS_DB must be an integer: %w", err)
		}
		cfg.RedisDB = n
	}
	if v := getenv("SEED_DATA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("SEED_DATA must be a boolean: %w", err)
		}
		cfg.SeedData = b
	}

	return cfg, nil
}
