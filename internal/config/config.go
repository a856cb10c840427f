package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	LogLevel       string

	LedgerStore  string
	DatabaseURL  string
	DBDriver     string
	DBMaxRetries int
	SQLitePath   string

	LockBackend string
	RedisAddr   string
	RedisPass   string

	KafkaBrokers []string
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LedgerStore:    getEnv("LEDGER_STORE", "memory"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBMaxRetries:   getEnvInt("DB_MAX_RETRIES", 5),
		SQLitePath:     getEnv("SQLITE_PATH", "ledger.db"),
		LockBackend:    getEnv("LOCK_BACKEND", "local"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      getEnv("REDIS_PASS", ""),
		KafkaBrokers:   getEnvSlice("KAFKA_BROKERS", nil),
	}
}

// Validate reports every problem at once.
func (c AppConfig) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	switch c.LedgerStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when LEDGER_STORE=postgres"))
		}
		if c.DBDriver != "postgres" && c.DBDriver != "pgx" {
			errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when LEDGER_STORE=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LEDGER_STORE %q", c.LedgerStore))
	}

	switch c.LockBackend {
	case "local":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when LOCK_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LOCK_BACKEND %q", c.LockBackend))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
