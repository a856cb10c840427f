package ledger

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// OperationLookup fetches a single movement on behalf of its owner.
type OperationLookup struct {
	directory interfaces.AccountDirectory
	store     interfaces.LedgerStore
}

func NewOperationLookup(directory interfaces.AccountDirectory, store interfaces.LedgerStore) *OperationLookup {
	return &OperationLookup{directory: directory, store: store}
}

// Find returns the movement only if ownerID owns it. A movement owned by
// someone else is reported as not found.
func (l *OperationLookup) Find(ctx context.Context, ownerID, movementID string) (models.Movement, error) {
	if err := resolve(ctx, l.directory, ownerID, ErrUserNotFound); err != nil {
		return models.Movement{}, err
	}

	m, err := l.store.FindByID(ctx, ownerID, movementID)
	if errors.Is(err, interfaces.ErrMovementNotFound) {
		return models.Movement{}, ErrStatementNotFound
	}
	if err != nil {
		return models.Movement{}, err
	}
	if m.OwnerID != ownerID {
		return models.Movement{}, ErrStatementNotFound
	}
	return m, nil
}
