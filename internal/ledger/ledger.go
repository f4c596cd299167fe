// Package ledger defines the transactional store every state transition
// runs against. A transition names the lock keys it touches, reads and
// stages writes through a Tx, and either commits all of them or none.
package ledger

import (
	"context"
	"sort"

	"ammCore/internal/model"
)

// Store serializes transitions that share a lock key. Transitions on
// disjoint keys may run in parallel.
type Store interface {
	// Update runs fn with exclusive access to keys. Staged writes and events
	// are applied only when fn returns nil. The committed events are
	// returned with their sequence numbers assigned.
	Update(ctx context.Context, keys []string, fn func(ctx context.Context, tx Tx) error) ([]model.EventRecord, error)
	// View runs fn against committed state. Writes inside fn are discarded.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}

// Tx is the read/write surface of one transition. Reads observe the
// transition's own staged writes.
type Tx interface {
	Pool(ctx context.Context, address model.Pubkey) (model.Pool, error)
	PutPool(ctx context.Context, pool model.Pool) error
	Pools(ctx context.Context) ([]model.Pool, error)

	Position(ctx context.Context, pool, owner model.Pubkey) (model.Position, error)
	PutPosition(ctx context.Context, position model.Position) error

	Order(ctx context.Context, id string) (model.LimitOrder, error)
	PutOrder(ctx context.Context, order model.LimitOrder) error
	OrdersByOwner(ctx context.Context, pool, owner model.Pubkey) ([]model.LimitOrder, error)
	PendingOrders(ctx context.Context, pool model.Pubkey) ([]model.LimitOrder, error)

	// Account returns a zero balance for accounts never written.
	Account(ctx context.Context, owner, mint model.Pubkey) (model.TokenAccount, error)
	PutAccount(ctx context.Context, account model.TokenAccount) error

	RewardConfig(ctx context.Context) (model.RewardConfig, bool, error)
	PutRewardConfig(ctx context.Context, cfg model.RewardConfig) error

	Emit(event model.EventRecord)
}

const rewardsKey = "rewards"

func PoolKey(pool model.Pubkey) string {
	return "pool:" + pool.String()
}

func AccountKey(owner, mint model.Pubkey) string {
	return "account:" + owner.String() + ":" + mint.String()
}

func RewardsKey() string {
	return rewardsKey
}

// SortKeys returns keys sorted and deduplicated. Every store acquires
// locks in this order, which rules out lock-order deadlocks.
func SortKeys(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i > 0 && k == out[n-1] {
			continue
		}
		out[n] = k
		n++
	}
	return out[:n]
}
