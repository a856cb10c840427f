package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "LEDGER_STORE", "LOCK_BACKEND", "KAFKA_BROKERS", "REQUEST_TIMEOUT", "DB_MAX_RETRIES"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.LedgerStore)
	assert.Equal(t, "local", cfg.LockBackend)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.DBMaxRetries)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LEDGER_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/ledger")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("DB_MAX_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.DBMaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := AppConfig{HTTPAddr: ":8080", RequestTimeout: time.Second, LedgerStore: "memory", LockBackend: "local"}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"unknown store", func(c *AppConfig) { c.LedgerStore = "mongo" }, `unknown LEDGER_STORE "mongo"`},
		{"postgres without url", func(c *AppConfig) { c.LedgerStore = "postgres"; c.DBDriver = "postgres" }, "DATABASE_URL is required"},
		{"bad driver", func(c *AppConfig) { c.LedgerStore = "postgres"; c.DatabaseURL = "x"; c.DBDriver = "mysql" }, `unknown DB_DRIVER "mysql"`},
		{"sqlite without path", func(c *AppConfig) { c.LedgerStore = "sqlite" }, "SQLITE_PATH is required"},
		{"redis without addr", func(c *AppConfig) { c.LockBackend = "redis" }, "REDIS_ADDR is required"},
		{"unknown lock", func(c *AppConfig) { c.LockBackend = "zk" }, `unknown LOCK_BACKEND "zk"`},
		{"zero timeout", func(c *AppConfig) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
