package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

type Directory struct {
	db *DB
}

func NewDirectory(db *DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Create(ctx context.Context, name, email string) (models.Account, error) {
	conn, err := d.db.take(ctx)
	if err != nil {
		return models.Account{}, err
	}
	defer d.db.pool.Put(conn)

	a := models.Account{ID: uuid.NewString(), Name: name, Email: email, CreatedAt: time.Now().UTC()}
	err = sqlitex.Execute(conn, `INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{a.ID, a.Name, a.Email, a.CreatedAt.UnixNano()}})
	if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
		return models.Account{}, interfaces.ErrEmailTaken
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("sqlite: insert user: %w", err)
	}
	return a, nil
}

func (d *Directory) Resolve(ctx context.Context, id string) (models.Account, error) {
	conn, err := d.db.take(ctx)
	if err != nil {
		return models.Account{}, err
	}
	defer d.db.pool.Put(conn)

	var (
		a     models.Account
		found bool
	)
	err = sqlitex.Execute(conn, `SELECT id, name, email, created_at FROM users WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			a = models.Account{
				ID:        stmt.ColumnText(0),
				Name:      stmt.ColumnText(1),
				Email:     stmt.ColumnText(2),
				CreatedAt: time.Unix(0, stmt.ColumnInt64(3)).UTC(),
			}
			found = true
			return nil
		},
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("sqlite: resolve user: %w", err)
	}
	if !found {
		return models.Account{}, interfaces.ErrAccountNotFound
	}
	return a, nil
}

var _ interfaces.AccountRegistry = (*Directory)(nil)
