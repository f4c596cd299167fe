package ledger

import (
	"context"
	"sort"
	"sync"

	"ammCore/internal/model"
)

type accountKey struct {
	owner model.Pubkey
	mint  model.Pubkey
}

// MemoryStore keeps the ledger in process memory.
type MemoryStore struct {
	locks *lockmap

	mu           sync.RWMutex
	pools        map[model.Pubkey]model.Pool
	positions    map[model.Pubkey]model.Position
	orders       map[string]model.LimitOrder
	ordersByPool map[model.Pubkey][]string
	accounts     map[accountKey]model.TokenAccount
	rewards      *model.RewardConfig
	events       []model.EventRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:        newLockmap(64),
		pools:        make(map[model.Pubkey]model.Pool),
		positions:    make(map[model.Pubkey]model.Position),
		orders:       make(map[string]model.LimitOrder),
		ordersByPool: make(map[model.Pubkey][]string),
		accounts:     make(map[accountKey]model.TokenAccount),
	}
}

func (s *MemoryStore) Update(ctx context.Context, keys []string, fn func(ctx context.Context, tx Tx) error) ([]model.EventRecord, error) {
	sorted := SortKeys(keys)
	for _, key := range sorted {
		s.locks.Lock(key)
	}
	defer func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			s.locks.Unlock(sorted[i])
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := newMemTx(s)
	if err := fn(ctx, tx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.apply(tx), nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, newMemTx(s))
}

func (s *MemoryStore) Close() {}

// Events returns committed events with Seq greater than after.
func (s *MemoryStore) Events(after uint64) []model.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := sort.Search(len(s.events), func(i int) bool { return s.events[i].Seq > after })
	out := make([]model.EventRecord, len(s.events)-idx)
	copy(out, s.events[idx:])
	return out
}

func (s *MemoryStore) apply(tx *memTx) []model.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, pool := range tx.pools {
		s.pools[addr] = pool
	}
	for addr, pos := range tx.positions {
		s.positions[addr] = pos
	}
	for _, id := range tx.orderIDs {
		order := tx.orders[id]
		if _, ok := s.orders[id]; !ok {
			s.ordersByPool[order.Pool] = append(s.ordersByPool[order.Pool], id)
		}
		s.orders[id] = order
	}
	for key, acct := range tx.accounts {
		s.accounts[key] = acct
	}
	if tx.rewards != nil {
		cfg := *tx.rewards
		s.rewards = &cfg
	}

	committed := make([]model.EventRecord, 0, len(tx.events))
	for _, ev := range tx.events {
		ev.Seq = uint64(len(s.events)) + 1
		s.events = append(s.events, ev)
		committed = append(committed, ev)
	}
	return committed
}

// memTx stages writes on top of the committed maps.
type memTx struct {
	s         *MemoryStore
	pools     map[model.Pubkey]model.Pool
	positions map[model.Pubkey]model.Position
	orders    map[string]model.LimitOrder
	orderIDs  []string
	accounts  map[accountKey]model.TokenAccount
	rewards   *model.RewardConfig
	events    []model.EventRecord
}

func newMemTx(s *MemoryStore) *memTx {
	return &memTx{
		s:         s,
		pools:     make(map[model.Pubkey]model.Pool),
		positions: make(map[model.Pubkey]model.Position),
		orders:    make(map[string]model.LimitOrder),
		accounts:  make(map[accountKey]model.TokenAccount),
	}
}

func (tx *memTx) Pool(_ context.Context, address model.Pubkey) (model.Pool, error) {
	if pool, ok := tx.pools[address]; ok {
		return pool, nil
	}
	tx.s.mu.RLock()
	pool, ok := tx.s.pools[address]
	tx.s.mu.RUnlock()
	if !ok {
		return model.Pool{}, model.ErrPoolNotFound
	}
	return pool, nil
}

func (tx *memTx) PutPool(_ context.Context, pool model.Pool) error {
	tx.pools[pool.Address] = pool
	return nil
}

func (tx *memTx) Pools(_ context.Context) ([]model.Pool, error) {
	merged := make(map[model.Pubkey]model.Pool)
	tx.s.mu.RLock()
	for addr, pool := range tx.s.pools {
		merged[addr] = pool
	}
	tx.s.mu.RUnlock()
	for addr, pool := range tx.pools {
		merged[addr] = pool
	}

	out := make([]model.Pool, 0, len(merged))
	for _, pool := range merged {
		out = append(out, pool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address.Less(out[j].Address) })
	return out, nil
}

func (tx *memTx) Position(_ context.Context, pool, owner model.Pubkey) (model.Position, error) {
	addr := model.DerivePosition(pool, owner)
	if pos, ok := tx.positions[addr]; ok {
		return pos, nil
	}
	tx.s.mu.RLock()
	pos, ok := tx.s.positions[addr]
	tx.s.mu.RUnlock()
	if !ok {
		return model.Position{}, model.ErrPositionNotFound
	}
	return pos, nil
}

func (tx *memTx) PutPosition(_ context.Context, position model.Position) error {
	tx.positions[position.Address()] = position
	return nil
}

func (tx *memTx) Order(_ context.Context, id string) (model.LimitOrder, error) {
	if order, ok := tx.orders[id]; ok {
		return order, nil
	}
	tx.s.mu.RLock()
	order, ok := tx.s.orders[id]
	tx.s.mu.RUnlock()
	if !ok {
		return model.LimitOrder{}, model.ErrOrderNotFound
	}
	return order, nil
}

func (tx *memTx) PutOrder(_ context.Context, order model.LimitOrder) error {
	if _, ok := tx.orders[order.ID]; !ok {
		tx.orderIDs = append(tx.orderIDs, order.ID)
	}
	tx.orders[order.ID] = order
	return nil
}

// poolOrders lists a pool's orders in creation order, staged ones last.
func (tx *memTx) poolOrders(pool model.Pubkey) []model.LimitOrder {
	tx.s.mu.RLock()
	ids := append([]string(nil), tx.s.ordersByPool[pool]...)
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	out := make([]model.LimitOrder, 0, len(ids))
	for _, id := range ids {
		order := tx.s.orders[id]
		if staged, ok := tx.orders[id]; ok {
			order = staged
		}
		out = append(out, order)
	}
	tx.s.mu.RUnlock()

	for _, id := range tx.orderIDs {
		if _, ok := known[id]; ok {
			continue
		}
		if order := tx.orders[id]; order.Pool == pool {
			out = append(out, order)
		}
	}
	return out
}

func (tx *memTx) OrdersByOwner(_ context.Context, pool, owner model.Pubkey) ([]model.LimitOrder, error) {
	var out []model.LimitOrder
	for _, order := range tx.poolOrders(pool) {
		if order.Owner == owner {
			out = append(out, order)
		}
	}
	return out, nil
}

func (tx *memTx) PendingOrders(_ context.Context, pool model.Pubkey) ([]model.LimitOrder, error) {
	var out []model.LimitOrder
	for _, order := range tx.poolOrders(pool) {
		if order.Status == model.OrderPending {
			out = append(out, order)
		}
	}
	return out, nil
}

func (tx *memTx) Account(_ context.Context, owner, mint model.Pubkey) (model.TokenAccount, error) {
	key := accountKey{owner: owner, mint: mint}
	if acct, ok := tx.accounts[key]; ok {
		return acct, nil
	}
	tx.s.mu.RLock()
	acct, ok := tx.s.accounts[key]
	tx.s.mu.RUnlock()
	if !ok {
		return model.TokenAccount{Owner: owner, Mint: mint}, nil
	}
	return acct, nil
}

func (tx *memTx) PutAccount(_ context.Context, account model.TokenAccount) error {
	tx.accounts[accountKey{owner: account.Owner, mint: account.Mint}] = account
	return nil
}

func (tx *memTx) RewardConfig(_ context.Context) (model.RewardConfig, bool, error) {
	if tx.rewards != nil {
		return *tx.rewards, true, nil
	}
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()
	if tx.s.rewards == nil {
		return model.RewardConfig{}, false, nil
	}
	return *tx.s.rewards, true, nil
}

func (tx *memTx) PutRewardConfig(_ context.Context, cfg model.RewardConfig) error {
	tx.rewards = &cfg
	return nil
}

func (tx *memTx) Emit(event model.EventRecord) {
	tx.events = append(tx.events, event)
}
