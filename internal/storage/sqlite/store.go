package sqlite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

const selectColumns = `SELECT id, user_id, type, amount, description, counterparty_id, created_at FROM statements`

// Store is a LedgerStore on top of a sqlite DB. Amounts are stored as
// decimal text so no precision is lost.
type Store struct {
	db *DB

	mu   sync.Mutex // orders timestamp assignment with the insert
	last int64
	now  func() time.Time
}

func NewStore(db *DB) *Store {
	return &Store{db: db, now: time.Now}
}

// stamp returns a unix-nano timestamp never below the previous one. Callers hold mu.
func (s *Store) stamp() int64 {
	t := s.now().UnixNano()
	if t < s.last {
		t = s.last
	}
	s.last = t
	return t
}

func insert(conn *sqlite.Conn, m models.Movement, at int64) (models.Movement, error) {
	m.ID = uuid.NewString()
	err := sqlitex.Execute(conn,
		`INSERT INTO statements (id, user_id, type, amount, description, counterparty_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{m.ID, m.OwnerID, string(m.Kind), m.Amount.String(), m.Description, m.CounterpartyID, at},
		})
	if err != nil {
		return models.Movement{}, fmt.Errorf("sqlite: insert statement: %w", err)
	}
	m.CreatedAt = time.Unix(0, at).UTC()
	return m, nil
}

func (s *Store) Append(ctx context.Context, m models.Movement) (models.Movement, error) {
	conn, err := s.db.take(ctx)
	if err != nil {
		return models.Movement{}, err
	}
	defer s.db.pool.Put(conn)

	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(conn, m, s.stamp())
}

// AppendPair writes both sides in one IMMEDIATE transaction.
func (s *Store) AppendPair(ctx context.Context, out, in models.Movement) (_ models.Movement, _ models.Movement, err error) {
	conn, err := s.db.take(ctx)
	if err != nil {
		return models.Movement{}, models.Movement{}, err
	}
	defer s.db.pool.Put(conn)

	s.mu.Lock()
	defer s.mu.Unlock()

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return models.Movement{}, models.Movement{}, fmt.Errorf("sqlite: begin transfer: %w", err)
	}
	defer endTransaction(&err)

	at := s.stamp()
	out, err = insert(conn, out, at)
	if err != nil {
		return models.Movement{}, models.Movement{}, err
	}
	in, err = insert(conn, in, at)
	if err != nil {
		return models.Movement{}, models.Movement{}, err
	}
	return out, in, nil
}

func readMovement(stmt *sqlite.Stmt) (models.Movement, error) {
	amount, err := decimal.NewFromString(stmt.ColumnText(3))
	if err != nil {
		return models.Movement{}, fmt.Errorf("sqlite: bad amount for statement %s: %w", stmt.ColumnText(0), err)
	}
	return models.Movement{
		ID:             stmt.ColumnText(0),
		OwnerID:        stmt.ColumnText(1),
		Kind:           models.MovementKind(stmt.ColumnText(2)),
		Amount:         amount,
		Description:    stmt.ColumnText(4),
		CounterpartyID: stmt.ColumnText(5),
		CreatedAt:      time.Unix(0, stmt.ColumnInt64(6)).UTC(),
	}, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.Movement, error) {
	conn, err := s.db.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.db.pool.Put(conn)

	result := []models.Movement{}
	err = sqlitex.Execute(conn, selectColumns+` WHERE user_id = ? ORDER BY seq`, &sqlitex.ExecOptions{
		Args: []any{ownerID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			m, err := readMovement(stmt)
			if err != nil {
				return err
			}
			result = append(result, m)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: list statements: %w", err)
	}
	return result, nil
}

func (s *Store) FindByID(ctx context.Context, ownerID, movementID string) (models.Movement, error) {
	conn, err := s.db.take(ctx)
	if err != nil {
		return models.Movement{}, err
	}
	defer s.db.pool.Put(conn)

	var (
		found bool
		m     models.Movement
	)
	err = sqlitex.Execute(conn, selectColumns+` WHERE id = ? AND user_id = ?`, &sqlitex.ExecOptions{
		Args: []any{movementID, ownerID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			m, err = readMovement(stmt)
			found = err == nil
			return err
		},
	})
	if err != nil {
		return models.Movement{}, fmt.Errorf("sqlite: find statement: %w", err)
	}
	if !found {
		return models.Movement{}, interfaces.ErrMovementNotFound
	}
	return m, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
