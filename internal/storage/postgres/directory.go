package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

const uniqueViolation = "23505"

// Directory resolves accounts from the users table.
type Directory struct {
	db *sql.DB
}

func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

// isUniqueViolation understands the error types of both supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func (d *Directory) Create(ctx context.Context, name, email string) (models.Account, error) {
	const query = `INSERT INTO users (id, name, email) VALUES ($1, $2, $3) RETURNING created_at`

	a := models.Account{ID: uuid.NewString(), Name: name, Email: email}
	err := d.db.QueryRowContext(ctx, query, a.ID, a.Name, a.Email).Scan(&a.CreatedAt)
	if isUniqueViolation(err) {
		return models.Account{}, interfaces.ErrEmailTaken
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("insert user: %w", err)
	}
	return a, nil
}

func (d *Directory) Resolve(ctx context.Context, id string) (models.Account, error) {
	const query = `SELECT id, name, email, created_at FROM users WHERE id = $1`

	var a models.Account
	err := d.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.Email, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("resolve user: %w", err)
	}
	return a, nil
}

var _ interfaces.AccountRegistry = (*Directory)(nil)
