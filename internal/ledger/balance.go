package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// Balance is an account balance derived from its movements.
type Balance struct {
	Amount    decimal.Decimal   `json:"balance"`
	Movements []models.Movement `json:"statement,omitempty"`
}

// BalanceCalculator derives balances by folding stored movements.
// It never consults the account directory.
type BalanceCalculator struct {
	store interfaces.LedgerStore
}

func NewBalanceCalculator(store interfaces.LedgerStore) *BalanceCalculator {
	return &BalanceCalculator{store: store}
}

// Compute sums the signed amounts of every movement owned by ownerID.
// The movement list is returned only when withMovements is set.
func (c *BalanceCalculator) Compute(ctx context.Context, ownerID string, withMovements bool) (Balance, error) {
	movements, err := c.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return Balance{}, err
	}

	balance := decimal.Zero
	for _, m := range movements {
		balance = balance.Add(m.Amount)
	}

	result := Balance{Amount: balance}
	if withMovements {
		result.Movements = movements
	}
	return result, nil
}
