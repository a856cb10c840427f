package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := newError(KindInsufficientFunds, "requested %d exceeds balance %d", 120, 110)

	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, errors.Is(err, ErrInvalidAmount))
	assert.Equal(t, "InsufficientFunds: requested 120 exceeds balance 110", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientFunds))
	assert.Equal(t, KindInsufficientFunds, KindOf(wrapped))
}

func TestKindOf_NonLedgerError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errBackend))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
