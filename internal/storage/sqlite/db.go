// Package sqlite stores the ledger in a single SQLite file, which suits a
// personal ledger running on one machine.
package sqlite

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS statements (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	user_id         TEXT NOT NULL,
	type            TEXT NOT NULL,
	amount          TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	counterparty_id TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS statements_user_id_seq_idx ON statements (user_id, seq);
`

// DB is a pool of connections to one ledger file.
type DB struct {
	pool   *sqlitex.Pool
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, poolSize int, logger *zap.Logger) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
		if poolSize < 4 {
			poolSize = 4
		}
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	db := &DB{pool: pool, path: path, logger: logger}

	conn, err := db.take(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	defer db.pool.Put(conn)
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("sqlite: applying schema: %w", err)
	}

	logger.Info("sqlite ledger opened", zap.String("path", path), zap.Int("pool_size", poolSize))
	return db, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=OFF",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return nil
}

func (db *DB) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := db.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: take: %w", err)
	}
	return conn, nil
}

// Close blocks until borrowed connections are returned.
func (db *DB) Close() error {
	if err := db.pool.Close(); err != nil {
		return fmt.Errorf("sqlite: closing %s: %w", db.path, err)
	}
	db.logger.Info("sqlite ledger closed", zap.String("path", db.path))
	return nil
}
