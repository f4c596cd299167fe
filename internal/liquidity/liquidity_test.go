package liquidity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ammCore/internal/model"
)

var (
	mintLow  = model.Pubkey{1}
	mintHigh = model.Pubkey{2}
	alice    = model.Pubkey{0xa1}
	bob      = model.Pubkey{0xb0}
	now      = time.Unix(1700000000, 0)
)

func seededPool(t *testing.T, a, b uint64) (model.Pool, model.Position) {
	t.Helper()
	res, err := Initialize(InitializeParams{
		Authority: alice,
		MintA:     mintLow,
		MintB:     mintHigh,
		DepositA:  a,
		DepositB:  b,
		Now:       now,
	})
	require.NoError(t, err)
	return res.Pool, res.Position
}

func TestInitializeBootstrapMintsSqrt(t *testing.T) {
	pool, pos := seededPool(t, 100, 400)
	require.Equal(t, uint64(200), pool.TotalLpSupply)
	require.Equal(t, uint64(200), pos.LpTokens)
	require.Equal(t, uint64(100), pool.ReserveA)
	require.Equal(t, uint64(400), pool.ReserveB)
	require.Equal(t, uint64(DefaultFeeNumerator), pool.FeeNumerator)
	require.Equal(t, now.Unix(), pos.DepositTimestamp)
	require.NoError(t, pool.Validate())
}

func TestInitializeCanonicalisesMintOrder(t *testing.T) {
	res, err := Initialize(InitializeParams{
		Authority: alice,
		MintA:     mintHigh,
		MintB:     mintLow,
		DepositA:  400,
		DepositB:  100,
		Now:       now,
	})
	require.NoError(t, err)
	require.Equal(t, mintLow, res.Pool.TokenAMint)
	require.Equal(t, uint64(100), res.Pool.ReserveA)
	require.Equal(t, uint64(400), res.Pool.ReserveB)
}

func TestInitializeRejects(t *testing.T) {
	_, err := Initialize(InitializeParams{MintA: mintLow, MintB: mintHigh, DepositA: 0, DepositB: 1})
	require.ErrorIs(t, err, model.ErrInvalidInitialDeposit)

	_, err = Initialize(InitializeParams{MintA: mintLow, MintB: mintLow, DepositA: 1, DepositB: 1})
	require.ErrorIs(t, err, model.ErrIdenticalMints)

	_, err = Initialize(InitializeParams{MintA: mintLow, MintB: mintHigh, DepositA: 1, DepositB: 1, FeeNumerator: 5, FeeDenominator: 5})
	require.ErrorIs(t, err, model.ErrInvalidFeeParameters)
}

func TestAddRespectsRatioTolerance(t *testing.T) {
	pool, _ := seededPool(t, 1000, 5000)
	pos := model.NewPosition(pool.Address, bob)

	res, err := Add(pool, pos, 100, 500, 0, now)
	require.NoError(t, err)
	require.Equal(t, pool.TotalLpSupply/10, res.Minted)
	require.Equal(t, uint64(1100), res.Pool.ReserveA)
	require.Equal(t, uint64(5500), res.Pool.ReserveB)
	require.Equal(t, pool.TotalLpSupply+res.Minted, res.Pool.TotalLpSupply)
	require.Equal(t, res.Minted, res.Position.LpTokens)

	_, err = Add(pool, pos, 100, 450, 0, now)
	require.ErrorIs(t, err, model.ErrRatioImbalance)
}

func TestAddSlippageGuard(t *testing.T) {
	pool, _ := seededPool(t, 1000, 5000)
	pos := model.NewPosition(pool.Address, bob)

	_, err := Add(pool, pos, 100, 500, pool.TotalLpSupply, now)
	require.ErrorIs(t, err, model.ErrSlippageTooHigh)

	_, err = Add(pool, pos, 0, 500, 0, now)
	require.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestRemoveProportional(t *testing.T) {
	pool := model.Pool{
		Address:        model.Pubkey{9},
		TokenAMint:     mintLow,
		TokenBMint:     mintHigh,
		ReserveA:       1000,
		ReserveB:       5000,
		TotalLpSupply:  200,
		FeeNumerator:   3,
		FeeDenominator: 1000,
	}
	pos := model.Position{Pool: pool.Address, Owner: bob, LpTokens: 80}

	res, err := Remove(pool, pos, 50, 250, 1250)
	require.NoError(t, err)
	require.Equal(t, uint64(250), res.AmountA)
	require.Equal(t, uint64(1250), res.AmountB)
	require.Equal(t, uint64(750), res.Pool.ReserveA)
	require.Equal(t, uint64(3750), res.Pool.ReserveB)
	require.Equal(t, uint64(150), res.Pool.TotalLpSupply)
	require.Equal(t, uint64(30), res.Position.LpTokens)

	_, err = Remove(pool, pos, 50, 251, 0)
	require.ErrorIs(t, err, model.ErrSlippageTooHigh)
	_, err = Remove(pool, pos, 81, 0, 0)
	require.ErrorIs(t, err, model.ErrInsufficientLpBalance)
	_, err = Remove(pool, pos, 0, 0, 0)
	require.ErrorIs(t, err, model.ErrInsufficientLpBalance)
}

func TestRemoveAllEmptiesPool(t *testing.T) {
	pool, pos := seededPool(t, 1000, 5000)
	res, err := Remove(pool, pos, pos.LpTokens, 0, 0)
	require.NoError(t, err)
	require.Zero(t, res.Pool.TotalLpSupply)
	require.Zero(t, res.Pool.ReserveA)
	require.Zero(t, res.Pool.ReserveB)
	require.NoError(t, res.Pool.Validate())
}

func TestAddThenRemoveNeverProfits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a0 := rapid.Uint64Range(1, 1<<32).Draw(rt, "seedA")
		b0 := rapid.Uint64Range(1, 1<<32).Draw(rt, "seedB")
		res, err := Initialize(InitializeParams{Authority: alice, MintA: mintLow, MintB: mintHigh, DepositA: a0, DepositB: b0, Now: now})
		require.NoError(rt, err)

		scale := rapid.Uint64Range(1, 1<<16).Draw(rt, "scale")
		a := a0 * scale
		b := b0 * scale
		added, err := Add(res.Pool, model.NewPosition(res.Pool.Address, bob), a, b, 0, now)
		require.NoError(rt, err)

		removed, err := Remove(added.Pool, added.Position, added.Minted, 0, 0)
		require.NoError(rt, err)
		require.LessOrEqual(rt, removed.AmountA, a)
		require.LessOrEqual(rt, removed.AmountB, b)
		require.NoError(rt, removed.Pool.Validate())
	})
}
