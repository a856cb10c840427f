// Package storetest holds the behaviour every LedgerStore and AccountRegistry
// realization must share. Backend packages run it from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

func deposit(owner string, amount int64) models.Movement {
	return models.Movement{
		OwnerID:     owner,
		Kind:        models.KindDeposit,
		Amount:      decimal.NewFromInt(amount),
		Description: "salary",
	}
}

// RunLedgerStore exercises the LedgerStore contract. newStore must return an
// empty store.
func RunLedgerStore(t *testing.T, newStore func(t *testing.T) interfaces.LedgerStore) {
	t.Run("AppendAssignsIDAndTimestamp", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		m, err := store.Append(ctx, deposit("u1", 110))
		require.NoError(t, err)
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
		assert.Equal(t, "u1", m.OwnerID)
		assert.Equal(t, models.KindDeposit, m.Kind)
		assert.True(t, decimal.NewFromInt(110).Equal(m.Amount))
		assert.Equal(t, "salary", m.Description)
		assert.Empty(t, m.CounterpartyID)
	})

	t.Run("ListByOwnerIsScopedAndOrdered", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		var want []string
		for i := int64(1); i <= 5; i++ {
			m, err := store.Append(ctx, deposit("u1", i))
			require.NoError(t, err)
			want = append(want, m.ID)
			_, err = store.Append(ctx, deposit("u2", i))
			require.NoError(t, err)
		}

		got, err := store.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i, m := range got {
			assert.Equal(t, want[i], m.ID)
			assert.Equal(t, "u1", m.OwnerID)
			if i > 0 {
				assert.False(t, m.CreatedAt.Before(got[i-1].CreatedAt), "created_at must not decrease")
			}
		}
	})

	t.Run("ListByOwnerUnknownIsEmpty", func(t *testing.T) {
		store := newStore(t)
		got, err := store.ListByOwner(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("AppendPairStoresBothSides", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		out, in, err := store.AppendPair(ctx,
			models.Movement{OwnerID: "s", Kind: models.KindTransferOut, Amount: decimal.NewFromInt(-100), Description: "rent", CounterpartyID: "r"},
			models.Movement{OwnerID: "r", Kind: models.KindTransferIn, Amount: decimal.NewFromInt(100), Description: "rent", CounterpartyID: "s"},
		)
		require.NoError(t, err)
		assert.NotEqual(t, out.ID, in.ID)
		assert.Equal(t, "r", out.CounterpartyID)
		assert.Equal(t, "s", in.CounterpartyID)

		senderSide, err := store.ListByOwner(ctx, "s")
		require.NoError(t, err)
		require.Len(t, senderSide, 1)
		assert.Equal(t, out.ID, senderSide[0].ID)
		assert.True(t, decimal.NewFromInt(-100).Equal(senderSide[0].Amount))

		receiverSide, err := store.ListByOwner(ctx, "r")
		require.NoError(t, err)
		require.Len(t, receiverSide, 1)
		assert.Equal(t, in.ID, receiverSide[0].ID)
		assert.Equal(t, models.KindTransferIn, receiverSide[0].Kind)
	})

	t.Run("FindByIDIsOwnerScoped", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		m, err := store.Append(ctx, deposit("u1", 7))
		require.NoError(t, err)

		found, err := store.FindByID(ctx, "u1", m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, found.ID)
		assert.True(t, m.Amount.Equal(found.Amount))

		_, err = store.FindByID(ctx, "u2", m.ID)
		assert.ErrorIs(t, err, interfaces.ErrMovementNotFound)

		_, err = store.FindByID(ctx, "u1", "missing")
		assert.ErrorIs(t, err, interfaces.ErrMovementNotFound)
	})

	t.Run("DecimalPrecisionSurvives", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		amount := decimal.RequireFromString("1234.56")
		m, err := store.Append(ctx, models.Movement{OwnerID: "u1", Kind: models.KindDeposit, Amount: amount})
		require.NoError(t, err)

		found, err := store.FindByID(ctx, "u1", m.ID)
		require.NoError(t, err)
		assert.True(t, amount.Equal(found.Amount), "got %s", found.Amount)
	})

	t.Run("ConcurrentPairsStayPaired", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := store.AppendPair(ctx,
					models.Movement{OwnerID: "a", Kind: models.KindTransferOut, Amount: decimal.NewFromInt(-1), CounterpartyID: "b"},
					models.Movement{OwnerID: "b", Kind: models.KindTransferIn, Amount: decimal.NewFromInt(1), CounterpartyID: "a"},
				)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		a, err := store.ListByOwner(ctx, "a")
		require.NoError(t, err)
		b, err := store.ListByOwner(ctx, "b")
		require.NoError(t, err)
		assert.Len(t, a, n)
		assert.Len(t, b, n)
	})
}

// RunAccountRegistry exercises the AccountRegistry contract.
func RunAccountRegistry(t *testing.T, newRegistry func(t *testing.T) interfaces.AccountRegistry) {
	t.Run("CreateThenResolve", func(t *testing.T) {
		reg := newRegistry(t)
		ctx := context.Background()

		a, err := reg.Create(ctx, "Ana", "ana@mail.com")
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID)

		got, err := reg.Resolve(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, "ana@mail.com", got.Email)
	})

	t.Run("ResolveUnknown", func(t *testing.T) {
		reg := newRegistry(t)
		_, err := reg.Resolve(context.Background(), "missing")
		assert.ErrorIs(t, err, interfaces.ErrAccountNotFound)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		reg := newRegistry(t)
		ctx := context.Background()

		_, err := reg.Create(ctx, "Ana", "ana@mail.com")
		require.NoError(t, err)
		_, err = reg.Create(ctx, "Other", "ana@mail.com")
		assert.ErrorIs(t, err, interfaces.ErrEmailTaken)
	})

	t.Run("DistinctIDs", func(t *testing.T) {
		reg := newRegistry(t)
		ctx := context.Background()

		seen := map[string]bool{}
		for i := 0; i < 10; i++ {
			a, err := reg.Create(ctx, "user", fmt.Sprintf("u%d@mail.com", i))
			require.NoError(t, err)
			assert.False(t, seen[a.ID])
			seen[a.ID] = true
		}
	})
}
