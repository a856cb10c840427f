package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// ErrMovementNotFound is returned by FindByID when the movement does not exist
// or belongs to another owner.
var ErrMovementNotFound = errors.New("movement not found")

// LedgerStore is the append-only persistence boundary for movements.
// Callers validate balances before appending; the store does not.
type LedgerStore interface {
	// Append stores m, assigning its ID and CreatedAt.
	Append(ctx context.Context, m models.Movement) (models.Movement, error)
	// AppendPair stores both sides of a transfer so that either both or
	// neither become visible.
	AppendPair(ctx context.Context, out, in models.Movement) (models.Movement, models.Movement, error)
	// ListByOwner returns the owner's movements in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Movement, error)
	FindByID(ctx context.Context, ownerID, movementID string) (models.Movement, error)
}
