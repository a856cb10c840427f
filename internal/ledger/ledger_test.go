package ledger

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/metrics"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models/events"
)

func newTestLedger(t *testing.T, pub *recordingPublisher) (*Ledger, *fixture, *observer.ObservedLogs, *prometheus.Registry) {
	t.Helper()
	f := newFixture(t)
	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()

	opts := []Option{
		WithLocker(f.locker),
		WithLogger(zap.New(core)),
		WithMetrics(metrics.New(reg)),
	}
	if pub != nil {
		opts = append(opts, WithPublisher(pub))
	}
	return NewLedger(f.directory, f.store, opts...), f, logs, reg
}

func TestLedger_DepositWithdrawScenario(t *testing.T) {
	l, f, _, _ := newTestLedger(t, nil)
	ctx := context.Background()
	u := f.user(t, "ana")

	_, err := l.Deposit(ctx, u, dec(110), "Casa")
	require.NoError(t, err)
	b, err := l.ComputeBalance(ctx, u, false)
	require.NoError(t, err)
	assert.True(t, dec(110).Equal(b.Amount))

	_, err = l.Withdraw(ctx, u, dec(120), "too much")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = l.Withdraw(ctx, u, dec(100), "rent")
	require.NoError(t, err)

	b, err = l.GetBalance(ctx, u)
	require.NoError(t, err)
	assert.True(t, dec(10).Equal(b.Amount))
	assert.Len(t, b.Movements, 2)
}

func TestLedger_GetBalanceUnknownUser(t *testing.T) {
	l, _, _, _ := newTestLedger(t, nil)

	_, err := l.GetBalance(context.Background(), "teste")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLedger_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	l, f, _, _ := newTestLedger(t, pub)
	ctx := context.Background()
	s := f.user(t, "s")
	r := f.user(t, "r")

	dep, err := l.Deposit(ctx, s, dec(150), "salary")
	require.NoError(t, err)
	res, err := l.Transfer(ctx, s, r, dec(100), "rent")
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, []string{events.TopicMovementRecorded, events.TopicTransferCompleted}, pub.topics)
	assert.Equal(t, []string{s, s}, pub.keys)

	recorded := pub.events[0].(events.MovementRecorded)
	assert.Equal(t, dep.ID, recorded.MovementID)

	completed := pub.events[1].(events.TransferCompleted)
	assert.Equal(t, res.SenderMovement.ID, completed.SenderMovementID)
	assert.Equal(t, res.ReceiverMovement.ID, completed.ReceiverMovementID)
	assert.Equal(t, s, completed.FromAccount)
	assert.Equal(t, r, completed.ToAccount)
	assert.True(t, dec(100).Equal(completed.Amount))
}

func TestLedger_NoEventOnRejection(t *testing.T) {
	pub := &recordingPublisher{}
	l, f, logs, reg := newTestLedger(t, pub)
	s := f.user(t, "s")
	r := f.user(t, "r")

	_, err := l.Transfer(context.Background(), s, r, dec(100), "rent")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Empty(t, pub.events)
	entries := logs.FilterMessage("transfer rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "InsufficientFunds", entries[0].ContextMap()["reason"])

	count, err := testutil.GatherAndCount(reg, "ledger_operations_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedger_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errBackend}
	l, f, logs, _ := newTestLedger(t, pub)
	u := f.user(t, "ana")

	m, err := l.Deposit(context.Background(), u, dec(5), "coins")
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 1, logs.FilterMessage("failed to publish ledger event").Len())

	b, err := l.ComputeBalance(context.Background(), u, false)
	require.NoError(t, err)
	assert.True(t, dec(5).Equal(b.Amount))
}

func TestLedger_InfraFailureLoggedAsError(t *testing.T) {
	l, f, logs, _ := newTestLedger(t, nil)
	u := f.user(t, "ana")
	f.store.appendErr = errBackend

	_, err := l.Deposit(context.Background(), u, dec(5), "coins")
	require.ErrorIs(t, err, errBackend)

	entries := logs.FilterMessage("record failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestLedger_FindScenario(t *testing.T) {
	l, f, _, _ := newTestLedger(t, nil)
	ctx := context.Background()
	u := f.user(t, "ana")
	other := f.user(t, "bob")

	m, err := l.Deposit(ctx, u, dec(110), "Casa")
	require.NoError(t, err)

	got, err := l.Find(ctx, u, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = l.Find(ctx, other, m.ID)
	assert.ErrorIs(t, err, ErrStatementNotFound)
}

func TestNewLedger_Defaults(t *testing.T) {
	f := newFixture(t)
	l := NewLedger(f.directory, f.store)
	u := f.user(t, "ana")

	_, err := l.Deposit(context.Background(), u, dec(1), "x")
	require.NoError(t, err)
}
