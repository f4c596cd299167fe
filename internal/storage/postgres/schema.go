package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pools (
		address TEXT PRIMARY KEY,
		token_a_mint TEXT NOT NULL,
		token_b_mint TEXT NOT NULL,
		data BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS pools_mints_idx ON pools (token_a_mint, token_b_mint)`,
	`CREATE TABLE IF NOT EXISTS positions (
		address TEXT PRIMARY KEY,
		pool TEXT NOT NULL,
		owner TEXT NOT NULL,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		created_seq BIGSERIAL,
		pool TEXT NOT NULL,
		owner TEXT NOT NULL,
		status SMALLINT NOT NULL,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_pool_owner_idx ON orders (pool, owner)`,
	`CREATE INDEX IF NOT EXISTS orders_pool_status_idx ON orders (pool, status)`,
	`CREATE TABLE IF NOT EXISTS token_accounts (
		owner TEXT NOT NULL,
		mint TEXT NOT NULL,
		balance NUMERIC(20, 0) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (owner, mint)
	)`,
	`CREATE TABLE IF NOT EXISTS reward_config (
		id SMALLINT PRIMARY KEY,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		seq BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		pool TEXT NOT NULL,
		at BIGINT NOT NULL,
		payload JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS events_pool_idx ON events (pool, seq)`,
	`CREATE TABLE IF NOT EXISTS replay_state (
		name TEXT PRIMARY KEY,
		last_seq BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the ledger tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
