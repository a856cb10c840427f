package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tells what produced a movement.
type MovementKind string

const (
	KindDeposit     MovementKind = "deposit"
	KindWithdraw    MovementKind = "withdraw"
	KindTransferOut MovementKind = "transfer_out"
	KindTransferIn  MovementKind = "transfer_in"
)

// Valid reports whether k is one of the known kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdraw, KindTransferOut, KindTransferIn:
		return true
	}
	return false
}

// Debit reports whether movements of this kind take money out of the owner's account.
func (k MovementKind) Debit() bool {
	return k == KindWithdraw || k == KindTransferOut
}

// Movement is a single immutable ledger record for one account.
// Amount already carries the sign of its effect on the balance.
type Movement struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"user_id"`
	Kind           MovementKind    `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	CounterpartyID string          `json:"counterparty_id,omitempty"` // receiver on transfer_out, sender on transfer_in
	CreatedAt      time.Time       `json:"created_at"`
}

// SignedAmount applies the sign convention of kind to an unsigned amount.
func SignedAmount(kind MovementKind, amount decimal.Decimal) decimal.Decimal {
	if kind.Debit() {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
