// Package cache holds read-side snapshots of pools so quotes do not need
// a ledger transaction. Snapshots are written after commit and may lag.
package cache

import (
	"context"
	"sync"

	"ammCore/internal/model"
)

// PoolCache stores the last committed pool record per address.
type PoolCache interface {
	GetPool(ctx context.Context, address model.Pubkey) (model.Pool, bool, error)
	PutPool(ctx context.Context, pool model.Pool) error
	Invalidate(ctx context.Context, address model.Pubkey) error
}

// MemoryPoolCache is a PoolCache for a single process.
type MemoryPoolCache struct {
	mu   sync.RWMutex
	data map[model.Pubkey]model.Pool
}

func NewMemoryPoolCache() *MemoryPoolCache {
	return &MemoryPoolCache{data: make(map[model.Pubkey]model.Pool)}
}

func (c *MemoryPoolCache) GetPool(_ context.Context, address model.Pubkey) (model.Pool, bool, error) {
	c.mu.RLock()
	pool, ok := c.data[address]
	c.mu.RUnlock()
	return pool, ok, nil
}

func (c *MemoryPoolCache) PutPool(_ context.Context, pool model.Pool) error {
	c.mu.Lock()
	c.data[pool.Address] = pool
	c.mu.Unlock()
	return nil
}

func (c *MemoryPoolCache) Invalidate(_ context.Context, address model.Pubkey) error {
	c.mu.Lock()
	delete(c.data, address)
	c.mu.Unlock()
	return nil
}

// TokenMetaCache caches display metadata by mint.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[model.Pubkey]model.TokenMeta
}

func NewTokenMetaCache(metas ...model.TokenMeta) *TokenMetaCache {
	c := &TokenMetaCache{data: make(map[model.Pubkey]model.TokenMeta, len(metas))}
	for _, meta := range metas {
		c.data[meta.Mint] = meta
	}
	return c
}

func (c *TokenMetaCache) Get(mint model.Pubkey) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[mint]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(meta model.TokenMeta) {
	c.mu.Lock()
	c.data[meta.Mint] = meta
	c.mu.Unlock()
}

// Decimals returns the mint's decimals, or 0 when unknown.
func (c *TokenMetaCache) Decimals(mint model.Pubkey) uint8 {
	meta, _ := c.Get(mint)
	return meta.Decimals
}
