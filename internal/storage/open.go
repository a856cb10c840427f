// Package storage picks a ledger backend from configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/storage/postgres"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/storage/sqlite"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Backend string

	DatabaseURL  string
	DBDriver     string
	DBMaxRetries int
	DBRetryDelay time.Duration

	SQLitePath     string
	SQLitePoolSize int
}

// Backend bundles the movement store and account registry of one backend.
type Backend struct {
	Store    interfaces.LedgerStore
	Accounts interfaces.AccountRegistry
	close    func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case BackendMemory, "":
		logger.Warn("using in-memory ledger, data is lost on restart")
		return &Backend{Store: memory.NewStore(), Accounts: memory.NewDirectory()}, nil

	case BackendPostgres:
		db, err := postgres.Connect(ctx, postgres.ConnectConfig{
			Driver:     cfg.DBDriver,
			URL:        cfg.DatabaseURL,
			MaxRetries: cfg.DBMaxRetries,
			RetryDelay: cfg.DBRetryDelay,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{Store: postgres.NewStore(db), Accounts: postgres.NewDirectory(db), close: db.Close}, nil

	case BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.SQLitePoolSize, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: sqlite.NewStore(db), Accounts: sqlite.NewDirectory(db), close: db.Close}, nil
	}

	return nil, fmt.Errorf("unknown ledger store %q", cfg.Backend)
}
