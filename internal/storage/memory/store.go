package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

// Store is an in-memory implementation of interfaces.LedgerStore.
// Movements live in an arena keyed by id, with a per-owner index of ids in
// insertion order.
type Store struct {
	mu      sync.RWMutex
	arena   map[string]models.Movement
	byOwner map[string][]string
	last    time.Time
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		arena:   make(map[string]models.Movement),
		byOwner: make(map[string][]string),
		now:     time.Now,
	}
}

// stamp returns the next creation time, never earlier than the previous one.
// Callers hold mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// insert assigns id and timestamp and indexes m. Callers hold mu.
func (s *Store) insert(m models.Movement, at time.Time) models.Movement {
	m.ID = uuid.NewString()
	m.CreatedAt = at
	s.arena[m.ID] = m
	s.byOwner[m.OwnerID] = append(s.byOwner[m.OwnerID], m.ID)
	return m
}

func (s *Store) Append(ctx context.Context, m models.Movement) (models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(m, s.stamp()), nil
}

// AppendPair writes both movements under one write lock, so readers see
// neither or both.
func (s *Store) AppendPair(ctx context.Context, out, in models.Movement) (models.Movement, models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.stamp()
	return s.insert(out, at), s.insert(in, at), nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerID]
	result := make([]models.Movement, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.arena[id])
	}
	return result, nil
}

func (s *Store) FindByID(ctx context.Context, ownerID, movementID string) (models.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.arena[movementID]
	if !ok || m.OwnerID != ownerID {
		return models.Movement{}, interfaces.ErrMovementNotFound
	}
	return m, nil
}

// Compile-time check: ensure Store implements LedgerStore interface
var _ interfaces.LedgerStore = (*Store)(nil)
