package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// MovementRecorder validates and appends single deposits and withdrawals.
type MovementRecorder struct {
	directory interfaces.AccountDirectory
	store     interfaces.LedgerStore
	balances  *BalanceCalculator
	locker    interfaces.AccountLocker
}

func NewMovementRecorder(directory interfaces.AccountDirectory, store interfaces.LedgerStore, balances *BalanceCalculator, locker interfaces.AccountLocker) *MovementRecorder {
	return &MovementRecorder{
		directory: directory,
		store:     store,
		balances:  balances,
		locker:    locker,
	}
}

// Record appends one deposit or withdrawal for ownerID. amount is the
// unsigned requested amount; the stored movement carries the sign.
func (r *MovementRecorder) Record(ctx context.Context, ownerID string, amount decimal.Decimal, description string, kind models.MovementKind) (models.Movement, error) {
	if kind != models.KindDeposit && kind != models.KindWithdraw {
		return models.Movement{}, newError(KindInvalidOperation, "unsupported statement type %q", kind)
	}
	if !amount.IsPositive() {
		return models.Movement{}, newError(KindInvalidAmount, "amount must be greater than zero")
	}

	if err := resolve(ctx, r.directory, ownerID, ErrUserNotFound); err != nil {
		return models.Movement{}, err
	}

	var recorded models.Movement
	err := r.locker.WithAccounts(ctx, []string{ownerID}, func(ctx context.Context) error {
		if kind == models.KindWithdraw {
			balance, err := r.balances.Compute(ctx, ownerID, false)
			if err != nil {
				return err
			}
			if amount.GreaterThan(balance.Amount) {
				return newError(KindInsufficientFunds, "requested %s exceeds balance %s", amount, balance.Amount)
			}
		}

		m, err := r.store.Append(ctx, models.Movement{
			OwnerID:     ownerID,
			Kind:        kind,
			Amount:      models.SignedAmount(kind, amount),
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("append %s: %w", kind, err)
		}
		recorded = m
		return nil
	})
	return recorded, err
}

// resolve checks that id exists in the directory, translating a miss into
// notFound and passing any other directory failure through.
func resolve(ctx context.Context, directory interfaces.AccountDirectory, id string, notFound *Error) error {
	if _, err := directory.Resolve(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrAccountNotFound) {
			return notFound
		}
		return fmt.Errorf("resolve account %s: %w", id, err)
	}
	return nil
}
