package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"ammCore/internal/model"
)

var (
	owner = model.Pubkey{0xaa}
	mintA = model.Pubkey{1}
	mintB = model.Pubkey{2}
	pool1 = model.Pubkey{7}
)

func TestSortKeys(t *testing.T) {
	got := SortKeys([]string{"pool:b", "account:x", "pool:b", "rewards", "pool:a"})
	require.Equal(t, []string{"account:x", "pool:a", "pool:b", "rewards"}, got)
	require.Empty(t, SortKeys(nil))
}

func TestLockmapReleasesKeys(t *testing.T) {
	l := newLockmap(1)
	l.Lock("a")
	l.Lock("b")
	require.Equal(t, 2, l.Locks())
	l.Unlock("a")
	l.Unlock("b")
	require.Zero(t, l.Locks())
	require.Panics(t, func() { l.Unlock("a") })
}

func TestLockmapHandsOffToWaiters(t *testing.T) {
	l := newLockmap(1)
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("pool")
			counter++
			l.Unlock("pool")
		}()
	}
	wg.Wait()
	require.Equal(t, 32, counter)
	require.Zero(t, l.Locks())
}

func TestUpdateCommitsAtomically(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	events, err := s.Update(ctx, []string{PoolKey(pool1)}, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.PutPool(ctx, model.Pool{Address: pool1, ReserveA: 10}))
		got, err := tx.Pool(ctx, pool1)
		require.NoError(t, err)
		require.Equal(t, uint64(10), got.ReserveA, "reads see staged writes")
		tx.Emit(model.EventRecord{Kind: model.EventPoolCreated, Pool: pool1})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(1), events[0].Seq)

	boom := errors.New("boom")
	_, err = s.Update(ctx, []string{PoolKey(pool1)}, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.PutPool(ctx, model.Pool{Address: pool1, ReserveA: 99}))
		tx.Emit(model.EventRecord{Kind: model.EventSwapExecuted, Pool: pool1})
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.Pool(ctx, pool1)
		require.NoError(t, err)
		require.Equal(t, uint64(10), got.ReserveA)
		return nil
	}))
	require.Len(t, s.Events(0), 1)
	require.Empty(t, s.Events(1))
}

func TestMissingRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Pool(ctx, pool1)
		require.ErrorIs(t, err, model.ErrPoolNotFound)
		_, err = tx.Position(ctx, pool1, owner)
		require.ErrorIs(t, err, model.ErrPositionNotFound)
		_, err = tx.Order(ctx, "nope")
		require.ErrorIs(t, err, model.ErrOrderNotFound)
		acct, err := tx.Account(ctx, owner, mintA)
		require.NoError(t, err)
		require.Zero(t, acct.Balance)
		_, ok, err := tx.RewardConfig(ctx)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}

func TestOrderIndexes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	other := model.Pubkey{0xbb}

	_, err := s.Update(ctx, []string{PoolKey(pool1)}, func(ctx context.Context, tx Tx) error {
		for i, o := range []model.LimitOrder{
			{ID: "1", Pool: pool1, Owner: owner, Status: model.OrderPending},
			{ID: "2", Pool: pool1, Owner: owner, Status: model.OrderCancelled},
			{ID: "3", Pool: pool1, Owner: other, Status: model.OrderPending},
			{ID: "4", Pool: model.Pubkey{8}, Owner: owner, Status: model.OrderPending},
		} {
			o.SellAmount = uint64(i + 1)
			require.NoError(t, tx.PutOrder(ctx, o))
		}
		staged, err := tx.PendingOrders(ctx, pool1)
		require.NoError(t, err)
		require.Len(t, staged, 2)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx Tx) error {
		mine, err := tx.OrdersByOwner(ctx, pool1, owner)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		require.Equal(t, "1", mine[0].ID)

		pending, err := tx.PendingOrders(ctx, pool1)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		return nil
	}))
}

func TestConcurrentUpdatesSerializePerKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	key := AccountKey(owner, mintA)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := s.Update(gctx, []string{key, AccountKey(owner, mintB)}, func(ctx context.Context, tx Tx) error {
				acct, err := tx.Account(ctx, owner, mintA)
				if err != nil {
					return err
				}
				time.Sleep(time.Microsecond)
				acct, err = acct.Credit(1)
				if err != nil {
					return err
				}
				return tx.PutAccount(ctx, acct)
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	require.NoError(t, s.View(ctx, func(ctx context.Context, tx Tx) error {
		acct, err := tx.Account(ctx, owner, mintA)
		require.NoError(t, err)
		require.Equal(t, uint64(50), acct.Balance)
		return nil
	}))
	require.Zero(t, s.locks.Locks())
}

func TestUpdateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := NewMemoryStore().Update(ctx, []string{RewardsKey()}, func(context.Context, Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}
