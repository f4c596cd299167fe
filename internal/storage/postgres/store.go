package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammCore/internal/codec"
	"ammCore/internal/ledger"
	"ammCore/internal/model"
)

// Store is a ledger.Store backed by Postgres. Each Update is one database
// transaction holding a transaction-scoped advisory lock per key.
type Store struct {
	pool *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Update(ctx context.Context, keys []string, fn func(ctx context.Context, tx ledger.Tx) error) ([]model.EventRecord, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, key := range ledger.SortKeys(keys) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
	}

	ltx := &pgTx{tx: tx}
	if err := fn(ctx, ltx); err != nil {
		return nil, err
	}

	committed := make([]model.EventRecord, 0, len(ltx.events))
	for _, ev := range ltx.events {
		row := tx.QueryRow(ctx, `
			INSERT INTO events (kind, pool, at, payload)
			VALUES ($1, $2, $3, $4)
			RETURNING seq
		`, ev.Kind, ev.Pool.String(), ev.At, []byte(ev.Payload))
		var seq int64
		if err := row.Scan(&seq); err != nil {
			return nil, fmt.Errorf("append event %s: %w", ev.Kind, err)
		}
		ev.Seq = uint64(seq)
		committed = append(committed, ev)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return committed, nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	return fn(ctx, &pgTx{tx: tx})
}

// Events returns up to limit committed events with seq greater than after.
func (s *Store) Events(ctx context.Context, after uint64, limit int) ([]model.EventRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, kind, pool, at, payload FROM events
		WHERE seq > $1 ORDER BY seq LIMIT $2
	`, int64(after), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventRecord
	for rows.Next() {
		var (
			seq     int64
			pool    string
			payload []byte
			ev      model.EventRecord
		)
		if err := rows.Scan(&seq, &ev.Kind, &pool, &ev.At, &payload); err != nil {
			return nil, err
		}
		if ev.Pool, err = model.ParsePubkey(pool); err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}
		ev.Seq = uint64(seq)
		ev.Payload = payload
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LoadState returns the last applied sequence for a replay stream.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq int64
	row := s.pool.QueryRow(ctx, `SELECT last_seq FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(seq), true, nil
}

// SaveState upserts the last applied sequence for a replay stream.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_seq = EXCLUDED.last_seq, updated_at = now()
	`, name, int64(seq))
	return err
}

type pgTx struct {
	tx     pgx.Tx
	events []model.EventRecord
}

func (t *pgTx) Pool(ctx context.Context, address model.Pubkey) (model.Pool, error) {
	var data []byte
	err := t.tx.QueryRow(ctx, `SELECT data FROM pools WHERE address=$1`, address.String()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pool{}, model.ErrPoolNotFound
	}
	if err != nil {
		return model.Pool{}, err
	}
	return codec.DecodePool(address, data)
}

func (t *pgTx) PutPool(ctx context.Context, pool model.Pool) error {
	data, err := codec.EncodePool(pool)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO pools (address, token_a_mint, token_b_mint, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (address)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, pool.Address.String(), pool.TokenAMint.String(), pool.TokenBMint.String(), data)
	return err
}

func (t *pgTx) Pools(ctx context.Context) ([]model.Pool, error) {
	rows, err := t.tx.Query(ctx, `SELECT address, data FROM pools ORDER BY address`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Pool
	for rows.Next() {
		var (
			addr string
			data []byte
		)
		if err := rows.Scan(&addr, &data); err != nil {
			return nil, err
		}
		key, err := model.ParsePubkey(addr)
		if err != nil {
			return nil, err
		}
		pool, err := codec.DecodePool(key, data)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", addr, err)
		}
		out = append(out, pool)
	}
	return out, rows.Err()
}

func (t *pgTx) Position(ctx context.Context, pool, owner model.Pubkey) (model.Position, error) {
	var data []byte
	addr := model.DerivePosition(pool, owner)
	err := t.tx.QueryRow(ctx, `SELECT data FROM positions WHERE address=$1`, addr.String()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Position{}, model.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, err
	}
	return codec.DecodePosition(data)
}

func (t *pgTx) PutPosition(ctx context.Context, position model.Position) error {
	data, err := codec.EncodePosition(position)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO positions (address, pool, owner, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (address)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, position.Address().String(), position.Pool.String(), position.Owner.String(), data)
	return err
}

func (t *pgTx) Order(ctx context.Context, id string) (model.LimitOrder, error) {
	var data []byte
	err := t.tx.QueryRow(ctx, `SELECT data FROM orders WHERE id=$1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LimitOrder{}, model.ErrOrderNotFound
	}
	if err != nil {
		return model.LimitOrder{}, err
	}
	return codec.DecodeOrder(data)
}

func (t *pgTx) PutOrder(ctx context.Context, order model.LimitOrder) error {
	data, err := codec.EncodeOrder(order)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO orders (id, pool, owner, status, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = now()
	`, order.ID, order.Pool.String(), order.Owner.String(), int16(order.Status), data)
	return err
}

func (t *pgTx) queryOrders(ctx context.Context, sql string, args ...interface{}) ([]model.LimitOrder, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LimitOrder
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		order, err := codec.DecodeOrder(data)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

func (t *pgTx) OrdersByOwner(ctx context.Context, pool, owner model.Pubkey) ([]model.LimitOrder, error) {
	return t.queryOrders(ctx, `
		SELECT data FROM orders WHERE pool=$1 AND owner=$2 ORDER BY created_seq
	`, pool.String(), owner.String())
}

func (t *pgTx) PendingOrders(ctx context.Context, pool model.Pubkey) ([]model.LimitOrder, error) {
	return t.queryOrders(ctx, `
		SELECT data FROM orders WHERE pool=$1 AND status=$2 ORDER BY created_seq
	`, pool.String(), int16(model.OrderPending))
}

func (t *pgTx) Account(ctx context.Context, owner, mint model.Pubkey) (model.TokenAccount, error) {
	acct := model.TokenAccount{Owner: owner, Mint: mint}
	var balance string
	err := t.tx.QueryRow(ctx, `
		SELECT balance::text FROM token_accounts WHERE owner=$1 AND mint=$2
	`, owner.String(), mint.String()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return acct, nil
	}
	if err != nil {
		return acct, err
	}
	if acct.Balance, err = strconv.ParseUint(balance, 10, 64); err != nil {
		return acct, fmt.Errorf("balance %s/%s: %w", owner, mint, err)
	}
	return acct, nil
}

func (t *pgTx) PutAccount(ctx context.Context, account model.TokenAccount) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO token_accounts (owner, mint, balance, updated_at)
		VALUES ($1, $2, $3::numeric, now())
		ON CONFLICT (owner, mint)
		DO UPDATE SET balance = EXCLUDED.balance, updated_at = now()
	`, account.Owner.String(), account.Mint.String(), strconv.FormatUint(account.Balance, 10))
	return err
}

func (t *pgTx) RewardConfig(ctx context.Context) (model.RewardConfig, bool, error) {
	var data []byte
	err := t.tx.QueryRow(ctx, `SELECT data FROM reward_config WHERE id=1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RewardConfig{}, false, nil
	}
	if err != nil {
		return model.RewardConfig{}, false, err
	}
	cfg, err := codec.DecodeRewardConfig(data)
	if err != nil {
		return model.RewardConfig{}, false, err
	}
	return cfg, true, nil
}

func (t *pgTx) PutRewardConfig(ctx context.Context, cfg model.RewardConfig) error {
	data, err := codec.EncodeRewardConfig(cfg)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO reward_config (id, data, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, data)
	return err
}

func (t *pgTx) Emit(event model.EventRecord) {
	t.events = append(t.events, event)
}
