package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already in use")
)

// AccountDirectory resolves account ids. It is read-only from the ledger's point of view.
type AccountDirectory interface {
	Resolve(ctx context.Context, id string) (models.Account, error)
}

// AccountRegistry is a directory that can also open new accounts.
type AccountRegistry interface {
	AccountDirectory
	Create(ctx context.Context, name, email string) (models.Account, error)
}
