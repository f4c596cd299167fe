package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"ammCore/internal/model"
)

func samplePool() model.Pool {
	return model.Pool{
		Address:        model.Pubkey{7},
		TokenAMint:     model.Pubkey{1},
		TokenBMint:     model.Pubkey{2},
		ReserveA:       10,
		ReserveB:       20,
		TotalLpSupply:  14,
		FeeNumerator:   3,
		FeeDenominator: 1000,
	}
}

func exercise(t *testing.T, c PoolCache) {
	t.Helper()
	ctx := context.Background()
	pool := samplePool()

	_, ok, err := c.GetPool(ctx, pool.Address)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.PutPool(ctx, pool))
	got, ok, err := c.GetPool(ctx, pool.Address)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pool, got)

	require.NoError(t, c.Invalidate(ctx, pool.Address))
	_, ok, err = c.GetPool(ctx, pool.Address)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryPoolCache(t *testing.T) {
	exercise(t, NewMemoryPoolCache())
}

func TestRedisPoolCache(t *testing.T) {
	addr := os.Getenv("AMM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AMM_TEST_REDIS_ADDR not set")
	}
	c, err := NewRedisPoolCache(context.Background(), RedisConfig{Address: addr, DB: 1, Prefix: "amm-test:"})
	require.NoError(t, err)
	defer c.Close()
	exercise(t, c)
}

func TestTokenMetaCache(t *testing.T) {
	c := NewTokenMetaCache(model.TokenMeta{Mint: model.Pubkey{1}, Decimals: 6, Symbol: "USDC"})
	require.Equal(t, uint8(6), c.Decimals(model.Pubkey{1}))
	require.Zero(t, c.Decimals(model.Pubkey{2}))

	c.Set(model.TokenMeta{Mint: model.Pubkey{2}, Decimals: 9, Symbol: "SOL"})
	meta, ok := c.Get(model.Pubkey{2})
	require.True(t, ok)
	require.Equal(t, "SOL", meta.Symbol)
}
