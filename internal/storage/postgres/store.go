package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// Store is a LedgerStore backed by the statements table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) insert(ctx context.Context, q execer, m models.Movement) (models.Movement, error) {
	const query = `INSERT INTO statements (id, user_id, type, amount, description, counterparty_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at`

	m.ID = uuid.NewString()
	err := q.QueryRowContext(ctx, query,
		m.ID, m.OwnerID, string(m.Kind), m.Amount, m.Description, nullable(m.CounterpartyID),
	).Scan(&m.CreatedAt)
	if err != nil {
		return models.Movement{}, fmt.Errorf("insert statement: %w", err)
	}
	return m, nil
}

func (s *Store) Append(ctx context.Context, m models.Movement) (models.Movement, error) {
	return s.insert(ctx, s.db, m)
}

// AppendPair inserts both sides inside one serializable transaction.
func (s *Store) AppendPair(ctx context.Context, out, in models.Movement) (_ models.Movement, _ models.Movement, err error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return models.Movement{}, models.Movement{}, fmt.Errorf("begin transfer: %w", err)
	}
	defer func() {
		if err != nil {
			_ = dbTx.Rollback()
		}
	}()

	out, err = s.insert(ctx, dbTx, out)
	if err != nil {
		return models.Movement{}, models.Movement{}, err
	}
	in, err = s.insert(ctx, dbTx, in)
	if err != nil {
		return models.Movement{}, models.Movement{}, err
	}
	if err = dbTx.Commit(); err != nil {
		return models.Movement{}, models.Movement{}, fmt.Errorf("commit transfer: %w", err)
	}
	return out, in, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovement(row scanner) (models.Movement, error) {
	var (
		m            models.Movement
		kind         string
		counterparty sql.NullString
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &kind, &m.Amount, &m.Description, &counterparty, &m.CreatedAt); err != nil {
		return models.Movement{}, err
	}
	m.Kind = models.MovementKind(kind)
	m.CounterpartyID = counterparty.String
	return m, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.Movement, error) {
	const query = `SELECT id, user_id, type, amount, description, counterparty_id, created_at
	FROM statements
	WHERE user_id = $1
	ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	entries := []models.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) FindByID(ctx context.Context, ownerID, movementID string) (models.Movement, error) {
	const query = `SELECT id, user_id, type, amount, description, counterparty_id, created_at
	FROM statements
	WHERE id = $1 AND user_id = $2`

	m, err := scanMovement(s.db.QueryRowContext(ctx, query, movementID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movement{}, interfaces.ErrMovementNotFound
	}
	if err != nil {
		return models.Movement{}, fmt.Errorf("find statement: %w", err)
	}
	return m, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
