package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));

CREATE TABLE IF NOT EXISTS statements (
	seq             BIGSERIAL UNIQUE,
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	type            TEXT NOT NULL,
	amount          NUMERIC NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	counterparty_id TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS statements_user_id_seq_idx ON statements (user_id, seq);
`

// Migrate creates the tables used by Store and Directory if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}
