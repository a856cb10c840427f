package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models/events"
)

func TestNewMessage(t *testing.T) {
	m := models.Movement{
		ID:        "m-1",
		OwnerID:   "u-1",
		Kind:      models.KindDeposit,
		Amount:    decimal.RequireFromString("12.50"),
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	msg, err := newMessage(events.TopicMovementRecorded, m.OwnerID, events.NewMovementRecorded(m))
	require.NoError(t, err)

	assert.Equal(t, events.TopicMovementRecorded, msg.Topic)
	assert.Equal(t, []byte("u-1"), msg.Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "m-1", decoded["movement_id"])
	assert.Equal(t, "deposit", decoded["type"])
	assert.Equal(t, "12.5", decoded["amount"])
}

func TestNewMessage_UnmarshalableEvent(t *testing.T) {
	_, err := newMessage("t", "k", make(chan int))
	assert.Error(t, err)
}

func TestNewPublisher_WriterHasNoFixedTopic(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"})
	defer p.Close()

	assert.Empty(t, p.writer.Topic)
}
