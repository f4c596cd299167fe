// Package exchange runs every caller-facing operation as one ledger
// transition: it locks the records involved, applies the pure engines,
// moves owner balances, and emits events. After commit it refreshes the
// pool cache, streams events to the sink, and updates metrics.
package exchange

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ammCore/internal/cache"
	"ammCore/internal/ledger"
	"ammCore/internal/metrics"
	"ammCore/internal/model"
	"ammCore/internal/quote"
	"ammCore/internal/storage"
)

const defaultSweepWorkers = 4

// Service is safe for concurrent use. Concurrency control lives in the
// ledger store.
type Service struct {
	store        ledger.Store
	cache        cache.PoolCache
	sink         storage.EventSink
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
	sweepWorkers int
	feeNum       uint64
	feeDen       uint64
}

type Option func(*Service)

func WithCache(c cache.PoolCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithSink(sink storage.EventSink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now, mostly for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithSweepWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sweepWorkers = n
		}
	}
}

// WithDefaultFee sets the fee used by InitializePool requests that leave
// both fee fields zero.
func WithDefaultFee(numerator, denominator uint64) Option {
	return func(s *Service) { s.feeNum, s.feeDen = numerator, denominator }
}

func New(store ledger.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:        store,
		cache:        cache.NewMemoryPoolCache(),
		sink:         storage.NopSink{},
		logger:       logger,
		now:          time.Now,
		sweepWorkers: defaultSweepWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// commit runs fn as one transition and handles everything that happens
// after a successful commit except the pool cache.
func (s *Service) commit(ctx context.Context, op string, keys []string, fn func(ctx context.Context, tx ledger.Tx) error) ([]model.EventRecord, error) {
	events, err := s.store.Update(ctx, keys, fn)
	s.observe(op, err)
	if err != nil {
		if !model.IsDomain(err) {
			s.logger.Error("transition failed", zap.String("op", op), zap.Error(err))
		}
		return nil, err
	}
	if err := s.sink.PutEvents(ctx, events); err != nil {
		s.logger.Warn("event sink write failed", zap.String("op", op), zap.Int("events", len(events)), zap.Error(err))
	}
	return events, nil
}

func (s *Service) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	var code uint32
	var name string
	var de *model.Error
	if errors.As(err, &de) {
		code, name = de.Code, de.Name
	}
	s.metrics.ObserveResult(op, code, name, err)
}

func (s *Service) publishPool(ctx context.Context, pool model.Pool) {
	if s.cache != nil {
		if err := s.cache.PutPool(ctx, pool); err != nil {
			s.logger.Warn("pool cache write failed", zap.String("pool", pool.Address.String()), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObservePool(pool.Address.String(), pool.ReserveA, pool.ReserveB, pool.TotalLpSupply)
	}
}

func emit(tx ledger.Tx, kind string, pool model.Pubkey, at time.Time, payload interface{}) error {
	ev, err := model.NewEventRecord(kind, pool, at, payload)
	if err != nil {
		return err
	}
	tx.Emit(ev)
	return nil
}

func debit(ctx context.Context, tx ledger.Tx, owner, mint model.Pubkey, amount uint64) error {
	acct, err := tx.Account(ctx, owner, mint)
	if err != nil {
		return err
	}
	if acct, err = acct.Debit(amount); err != nil {
		return err
	}
	return tx.PutAccount(ctx, acct)
}

func credit(ctx context.Context, tx ledger.Tx, owner, mint model.Pubkey, amount uint64) error {
	acct, err := tx.Account(ctx, owner, mint)
	if err != nil {
		return err
	}
	if acct, err = acct.Credit(amount); err != nil {
		return err
	}
	return tx.PutAccount(ctx, acct)
}

// Pool reads a committed pool.
func (s *Service) Pool(ctx context.Context, address model.Pubkey) (model.Pool, error) {
	var pool model.Pool
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		pool, err = tx.Pool(ctx, address)
		return err
	})
	return pool, err
}

func (s *Service) Pools(ctx context.Context) ([]model.Pool, error) {
	var pools []model.Pool
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		pools, err = tx.Pools(ctx)
		return err
	})
	return pools, err
}

func (s *Service) Position(ctx context.Context, pool, owner model.Pubkey) (model.Position, error) {
	var pos model.Position
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		pos, err = tx.Position(ctx, pool, owner)
		return err
	})
	return pos, err
}

func (s *Service) Order(ctx context.Context, id string) (model.LimitOrder, error) {
	var order model.LimitOrder
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		order, err = tx.Order(ctx, id)
		return err
	})
	return order, err
}

// Orders lists an owner's orders on a pool, oldest first.
func (s *Service) Orders(ctx context.Context, pool, owner model.Pubkey) ([]model.LimitOrder, error) {
	var orders []model.LimitOrder
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		orders, err = tx.OrdersByOwner(ctx, pool, owner)
		return err
	})
	return orders, err
}

func (s *Service) Balance(ctx context.Context, owner, mint model.Pubkey) (uint64, error) {
	var balance uint64
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		acct, err := tx.Account(ctx, owner, mint)
		balance = acct.Balance
		return err
	})
	return balance, err
}

// RewardConfig reads the rewards configuration.
func (s *Service) RewardConfig(ctx context.Context) (model.RewardConfig, error) {
	var cfg model.RewardConfig
	err := s.store.View(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var ok bool
		var err error
		cfg, ok, err = tx.RewardConfig(ctx)
		if err == nil && !ok {
			err = model.ErrRewardsNotInitialized
		}
		return err
	})
	return cfg, err
}

// QuoteSwap previews a trade. It prefers the cached snapshot and falls
// back to the ledger.
func (s *Service) QuoteSwap(ctx context.Context, address model.Pubkey, aToB bool, amountIn, slippageBps uint64) (quote.SwapQuote, error) {
	var (
		pool model.Pool
		ok   bool
	)
	if s.cache != nil {
		var err error
		pool, ok, err = s.cache.GetPool(ctx, address)
		if err != nil {
			s.logger.Warn("pool cache read failed", zap.String("pool", address.String()), zap.Error(err))
		}
	}
	if !ok {
		var err error
		if pool, err = s.Pool(ctx, address); err != nil {
			return quote.SwapQuote{}, err
		}
		s.publishPool(ctx, pool)
	}
	return quote.Quote(pool, aToB, amountIn, slippageBps)
}

// Deposit funds an owner's available balance.
func (s *Service) Deposit(ctx context.Context, owner, mint model.Pubkey, amount uint64) (model.TokenAccount, error) {
	if amount == 0 {
		s.observe(model.OpDeposit, model.ErrInvalidAmount)
		return model.TokenAccount{}, model.ErrInvalidAmount
	}
	now := s.now()
	var acct model.TokenAccount
	_, err := s.commit(ctx, model.OpDeposit, []string{ledger.AccountKey(owner, mint)}, func(ctx context.Context, tx ledger.Tx) error {
		if err := credit(ctx, tx, owner, mint, amount); err != nil {
			return err
		}
		var err error
		if acct, err = tx.Account(ctx, owner, mint); err != nil {
			return err
		}
		return emit(tx, model.EventDeposit, model.Pubkey{}, now, model.DepositData{
			Owner:   owner,
			Mint:    mint,
			Amount:  amount,
			Balance: acct.Balance,
		})
	})
	if err != nil {
		return model.TokenAccount{}, err
	}
	s.logger.Debug("deposit", zap.String("owner", owner.String()), zap.String("mint", mint.String()), zap.Uint64("amount", amount))
	return acct, nil
}
