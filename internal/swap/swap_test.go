package swap

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ammCore/internal/model"
)

func testPool(a, b uint64) model.Pool {
	return model.Pool{
		Address:        model.Pubkey{7},
		TokenAMint:     model.Pubkey{1},
		TokenBMint:     model.Pubkey{2},
		ReserveA:       a,
		ReserveB:       b,
		TotalLpSupply:  1,
		FeeNumerator:   3,
		FeeDenominator: 1000,
	}
}

func TestExecuteAToB(t *testing.T) {
	res, err := Execute(testPool(10000, 50000), true, 1000, 4500)
	require.NoError(t, err)
	require.Equal(t, uint64(4534), res.AmountOut)
	require.Equal(t, uint64(3), res.FeeAmount)
	require.Equal(t, uint64(11000), res.Pool.ReserveA, "fee stays in the pool")
	require.Equal(t, uint64(45466), res.Pool.ReserveB)
	require.Equal(t, model.Pubkey{1}, res.SellMint)
	require.Equal(t, model.Pubkey{2}, res.BuyMint)
}

func TestExecuteBToA(t *testing.T) {
	res, err := Execute(testPool(10000, 50000), false, 5000, 0)
	require.NoError(t, err)
	require.False(t, res.AToB)
	require.Equal(t, uint64(55000), res.Pool.ReserveB)
	require.Equal(t, uint64(10000)-res.AmountOut, res.Pool.ReserveA)
	require.Equal(t, model.Pubkey{2}, res.SellMint)
}

func TestExecuteRejects(t *testing.T) {
	pool := testPool(10000, 50000)

	_, err := Execute(pool, true, 0, 0)
	require.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = Execute(pool, true, 1000, 4535)
	require.ErrorIs(t, err, model.ErrSlippageTooHigh)

	_, err = Execute(testPool(0, 0), true, 10, 0)
	require.ErrorIs(t, err, model.ErrInsufficientPoolReserves)

	// Draining the output side fails on liquidity before slippage is checked.
	_, err = Execute(testPool(1, 1), true, 1000, math.MaxUint64)
	require.ErrorIs(t, err, model.ErrInsufficientLiquidity)

	// The smallest trade still moves the output reserve.
	res, err := Execute(pool, false, 1, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.AmountOut)
}

func TestMarketWrappers(t *testing.T) {
	pool := testPool(10000, 50000)

	sell, err := MarketSell(pool, 1000, 0)
	require.NoError(t, err)
	require.True(t, sell.AToB)

	buy, err := MarketBuy(pool, 1000, 0)
	require.NoError(t, err)
	require.False(t, buy.AToB)
	require.Equal(t, model.Pubkey{1}, buy.BuyMint)
}

func TestDirection(t *testing.T) {
	pool := testPool(1, 1)
	aToB, err := Direction(pool, model.Pubkey{1})
	require.NoError(t, err)
	require.True(t, aToB)

	_, err = Direction(pool, model.Pubkey{3})
	require.ErrorIs(t, err, model.ErrInvalidTokenMint)
}

func TestExecuteProductWithinTruncation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint64Range(1, 1<<50).Draw(t, "reserveA")
		b := rapid.Uint64Range(1, 1<<50).Draw(t, "reserveB")
		in := rapid.Uint64Range(1, 1<<50).Draw(t, "amountIn")
		aToB := rapid.Bool().Draw(t, "aToB")

		pool := testPool(a, b)
		res, err := Execute(pool, aToB, in, 0)
		if err != nil {
			require.True(t, model.IsDomain(err))
			return
		}
		before := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
		after := new(uint256.Int).Mul(uint256.NewInt(res.Pool.ReserveA), uint256.NewInt(res.Pool.ReserveB))
		newIn, _ := res.Pool.Reserves(aToB)
		after.AddUint64(after, newIn)
		require.True(t, after.Gt(before), "product fell by more than one output unit")
		require.Positive(t, res.Pool.ReserveA)
		require.Positive(t, res.Pool.ReserveB)
	})
}
