package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	"go.uber.org/zap"
)

// ConnectConfig describes how to reach the database.
type ConnectConfig struct {
	// Driver is "postgres" (lib/pq) or "pgx" (pgx stdlib).
	Driver     string
	URL        string
	MaxRetries int
	RetryDelay time.Duration
}

// Connect opens a pool and pings it, retrying with exponential backoff.
func Connect(ctx context.Context, cfg ConnectConfig, logger *zap.Logger) (*sql.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = "postgres"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)

	delay := cfg.RetryDelay
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			logger.Info("connected to database", zap.String("driver", cfg.Driver), zap.Int("attempt", attempt))
			return db, nil
		}

		logger.Warn("database connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Error(err))
		if attempt == cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("connect to database after %d attempts: %w", cfg.MaxRetries, err)
}
