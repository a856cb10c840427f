package locking

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, orderedKeys([]string{"c", "a", "b", "a"}))
	assert.Empty(t, orderedKeys(nil))
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithAccounts(ctx, []string{"acc-1"}, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestLocalLocker_OppositeOrderDoesNotDeadlock(t *testing.T) {
	locker := NewLocalLocker()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		ids := []string{"a", "b"}
		if i%2 == 1 {
			ids = []string{"b", "a"}
		}
		wg.Add(1)
		go func(ids []string) {
			defer wg.Done()
			assert.NoError(t, locker.WithAccounts(ctx, ids, func(context.Context) error { return nil }))
		}(ids)
	}
	wg.Wait()
}

func TestLocalLocker_DuplicateIDs(t *testing.T) {
	locker := NewLocalLocker()
	called := false
	err := locker.WithAccounts(context.Background(), []string{"x", "x"}, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLocalLocker_ContextCancelledWhileWaiting(t *testing.T) {
	locker := NewLocalLocker()
	release := make(chan struct{})
	acquired := make(chan struct{})

	go func() {
		_ = locker.WithAccounts(context.Background(), []string{"acc"}, func(context.Context) error {
			close(acquired)
			<-release
			return nil
		})
	}()
	<-acquired

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := locker.WithAccounts(ctx, []string{"acc"}, func(context.Context) error {
		t.Fatal("must not run while the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, locker.WithAccounts(context.Background(), []string{"acc"}, func(context.Context) error { return nil }))
}

func TestLocalLocker_PropagatesFnError(t *testing.T) {
	locker := NewLocalLocker()
	boom := assert.AnError
	err := locker.WithAccounts(context.Background(), []string{"acc"}, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	// the lock must have been released
	require.NoError(t, locker.WithAccounts(context.Background(), []string{"acc"}, func(context.Context) error { return nil }))
}
