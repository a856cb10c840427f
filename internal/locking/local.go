// Package locking provides per-account locks for the ledger's
// read-check-append sequences.
package locking

import (
	"context"
	"sort"
	"sync"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
)

// LocalLocker holds one lock per account id inside this process.
type LocalLocker struct {
	mapMu sync.Mutex               // protects locks
	locks map[string]chan struct{} // one-slot semaphore per account
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) accountLock(accountID string) chan struct{} {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	lock, ok := l.locks[accountID]
	if !ok {
		lock = make(chan struct{}, 1)
		l.locks[accountID] = lock
	}
	return lock
}

// WithAccounts acquires the accounts in sorted order to avoid deadlocks
// between two transfers running in opposite directions.
func (l *LocalLocker) WithAccounts(ctx context.Context, accountIDs []string, fn func(ctx context.Context) error) error {
	held := make([]chan struct{}, 0, len(accountIDs))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}()

	for _, id := range orderedKeys(accountIDs) {
		lock := l.accountLock(id)
		select {
		case lock <- struct{}{}:
			held = append(held, lock)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fn(ctx)
}

// orderedKeys sorts and de-duplicates ids.
func orderedKeys(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

var _ interfaces.AccountLocker = (*LocalLocker)(nil)
