package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

const (
	TopicMovementRecorded  = "ledger.movement_recorded"
	TopicTransferCompleted = "ledger.transfer_completed"
)

// MovementRecorded is emitted after a deposit or withdrawal is appended.
type MovementRecorded struct {
	MovementID  string              `json:"movement_id"`
	UserID      string              `json:"user_id"`
	Type        models.MovementKind `json:"type"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// TransferCompleted is emitted once both sides of a transfer are stored.
type TransferCompleted struct {
	SenderMovementID   string          `json:"sender_movement_id"`
	ReceiverMovementID string          `json:"receiver_movement_id"`
	FromAccount        string          `json:"from_account"`
	ToAccount          string          `json:"to_account"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

func NewMovementRecorded(m models.Movement) MovementRecorded {
	return MovementRecorded{
		MovementID:  m.ID,
		UserID:      m.OwnerID,
		Type:        m.Kind,
		Amount:      m.Amount,
		Description: m.Description,
		OccurredAt:  m.CreatedAt,
	}
}

func NewTransferCompleted(out, in models.Movement) TransferCompleted {
	return TransferCompleted{
		SenderMovementID:   out.ID,
		ReceiverMovementID: in.ID,
		FromAccount:        out.OwnerID,
		ToAccount:          in.OwnerID,
		Amount:             in.Amount,
		Description:        out.Description,
		OccurredAt:         out.CreatedAt,
	}
}
