package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// TransferResult holds both sides of a completed transfer.
type TransferResult struct {
	SenderMovement   models.Movement `json:"sender_statement"`
	ReceiverMovement models.Movement `json:"receiver_statement"`
}

// TransferCoordinator moves money between two accounts as one
// all-or-nothing double entry.
type TransferCoordinator struct {
	directory interfaces.AccountDirectory
	store     interfaces.LedgerStore
	balances  *BalanceCalculator
	locker    interfaces.AccountLocker
}

func NewTransferCoordinator(directory interfaces.AccountDirectory, store interfaces.LedgerStore, balances *BalanceCalculator, locker interfaces.AccountLocker) *TransferCoordinator {
	return &TransferCoordinator{
		directory: directory,
		store:     store,
		balances:  balances,
		locker:    locker,
	}
}

// Transfer debits senderID and credits receiverID by amount.
//
// Checks run in a fixed order and stop at the first failure: amount,
// sender, receiver, self-transfer, then the sender's balance. Nothing is
// written unless every check passes.
func (c *TransferCoordinator) Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal, description string) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, newError(KindInvalidAmount, "amount must be greater than zero")
	}
	if err := resolve(ctx, c.directory, senderID, ErrSenderNotFound); err != nil {
		return TransferResult{}, err
	}
	if err := resolve(ctx, c.directory, receiverID, ErrReceiverNotFound); err != nil {
		return TransferResult{}, err
	}
	if senderID == receiverID {
		return TransferResult{}, newError(KindInvalidAmount, "sender and receiver must be different accounts")
	}

	var result TransferResult
	err := c.locker.WithAccounts(ctx, []string{senderID, receiverID}, func(ctx context.Context) error {
		balance, err := c.balances.Compute(ctx, senderID, false)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance.Amount) {
			return newError(KindInsufficientFunds, "requested %s exceeds balance %s", amount, balance.Amount)
		}

		out, in, err := c.store.AppendPair(ctx,
			models.Movement{
				OwnerID:        senderID,
				Kind:           models.KindTransferOut,
				Amount:         models.SignedAmount(models.KindTransferOut, amount),
				Description:    description,
				CounterpartyID: receiverID,
			},
			models.Movement{
				OwnerID:        receiverID,
				Kind:           models.KindTransferIn,
				Amount:         models.SignedAmount(models.KindTransferIn, amount),
				Description:    description,
				CounterpartyID: senderID,
			},
		)
		if err != nil {
			return fmt.Errorf("append transfer pair: %w", err)
		}
		result = TransferResult{SenderMovement: out, ReceiverMovement: in}
		return nil
	})
	return result, err
}
