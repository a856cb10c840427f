package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/locking"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/storage/memory"
)

var errBackend = errors.New("backend unavailable")

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// countingDirectory counts Resolve calls and can be made to fail.
type countingDirectory struct {
	*memory.Directory
	calls atomic.Int32
	err   error
}

func (d *countingDirectory) Resolve(ctx context.Context, id string) (models.Account, error) {
	d.calls.Add(1)
	if d.err != nil {
		return models.Account{}, d.err
	}
	return d.Directory.Resolve(ctx, id)
}

// faultyStore wraps the memory store with injectable failures.
type faultyStore struct {
	*memory.Store
	appendErr error
	listErr   error
	findErr   error
}

func (s *faultyStore) Append(ctx context.Context, m models.Movement) (models.Movement, error) {
	if s.appendErr != nil {
		return models.Movement{}, s.appendErr
	}
	return s.Store.Append(ctx, m)
}

func (s *faultyStore) AppendPair(ctx context.Context, out, in models.Movement) (models.Movement, models.Movement, error) {
	if s.appendErr != nil {
		return models.Movement{}, models.Movement{}, s.appendErr
	}
	return s.Store.AppendPair(ctx, out, in)
}

func (s *faultyStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Movement, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Store.ListByOwner(ctx, ownerID)
}

func (s *faultyStore) FindByID(ctx context.Context, ownerID, movementID string) (models.Movement, error) {
	if s.findErr != nil {
		return models.Movement{}, s.findErr
	}
	return s.Store.FindByID(ctx, ownerID, movementID)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	directory *countingDirectory
	store     *faultyStore
	locker    interfaces.AccountLocker
	balances  *BalanceCalculator
	recorder  *MovementRecorder
	transfers *TransferCoordinator
	lookup    *OperationLookup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		directory: &countingDirectory{Directory: memory.NewDirectory()},
		store:     &faultyStore{Store: memory.NewStore()},
		locker:    locking.NewLocalLocker(),
	}
	f.balances = NewBalanceCalculator(f.store)
	f.recorder = NewMovementRecorder(f.directory, f.store, f.balances, f.locker)
	f.transfers = NewTransferCoordinator(f.directory, f.store, f.balances, f.locker)
	f.lookup = NewOperationLookup(f.directory, f.store)
	return f
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	a, err := f.directory.Create(context.Background(), name, name+"@mail.com")
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	b, err := f.balances.Compute(context.Background(), id, false)
	require.NoError(t, err)
	return b.Amount
}

func (f *fixture) deposit(t *testing.T, id string, amount int64) models.Movement {
	t.Helper()
	m, err := f.recorder.Record(context.Background(), id, dec(amount), "deposit", models.KindDeposit)
	require.NoError(t, err)
	return m
}
