package quote

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ammCore/internal/model"
)

func TestSwapOutputBreakdown(t *testing.T) {
	b, err := SwapOutput(10000, 50000, 1000, 3, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(3), b.FeeAmount)
	require.Equal(t, uint64(997), b.AmountInAfterFee)
	require.Equal(t, "500000000", b.K)
	require.Equal(t, uint64(10997), b.NewReserveIn)
	// 500000000/10997 = 45466.94...
	require.Equal(t, uint64(45466), b.NewReserveOut)
	require.Equal(t, uint64(4534), b.AmountOut)
}

func TestSwapOutputRejects(t *testing.T) {
	cases := []struct {
		name                        string
		rIn, rOut, amount, num, den uint64
		want                        error
	}{
		{"zero amount", 10, 10, 0, 3, 1000, model.ErrInvalidAmount},
		{"empty in", 0, 10, 5, 3, 1000, model.ErrInsufficientPoolReserves},
		{"empty out", 10, 0, 5, 3, 1000, model.ErrInsufficientPoolReserves},
		{"zero denominator", 10, 10, 5, 0, 0, model.ErrInvalidFeeParameters},
		{"fee at 100%", 10, 10, 5, 1000, 1000, model.ErrInvalidFeeParameters},
		{"drains output", 1, 1, 1000, 3, 1000, model.ErrInsufficientLiquidity},
		{"input overflows reserve", math.MaxUint64, 10, math.MaxUint64, 0, 1, model.ErrCalculationOverflow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SwapOutput(tc.rIn, tc.rOut, tc.amount, tc.num, tc.den)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSwapOutputInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rIn := rapid.Uint64Range(1, 1<<62).Draw(t, "reserveIn")
		rOut := rapid.Uint64Range(1, 1<<62).Draw(t, "reserveOut")
		amountIn := rapid.Uint64Range(1, 1<<62).Draw(t, "amountIn")
		den := rapid.Uint64Range(1, 100_000).Draw(t, "feeDen")
		num := rapid.Uint64Range(0, den-1).Draw(t, "feeNum")

		k := new(uint256.Int).Mul(uint256.NewInt(rIn), uint256.NewInt(rOut))
		b, err := SwapOutput(rIn, rOut, amountIn, num, den)
		if err != nil {
			// Refused only when the whole output reserve would leave.
			require.ErrorIs(t, err, model.ErrInsufficientLiquidity)
			require.True(t, k.Lt(uint256.NewInt(rIn+amountIn)))
			return
		}
		require.Less(t, b.AmountOut, rOut)
		require.Positive(t, b.NewReserveOut)

		// Flooring loses less than one unit of output, so the product
		// can fall below k by less than the new input reserve.
		curve := new(uint256.Int).Mul(uint256.NewInt(b.NewReserveIn), uint256.NewInt(b.NewReserveOut))
		require.False(t, curve.Gt(k), "fee-exclusive product above k")
		curve.AddUint64(curve, b.NewReserveIn)
		require.True(t, curve.Gt(k), "truncation exceeded one output unit")

		pool := new(uint256.Int).Mul(uint256.NewInt(rIn+amountIn), uint256.NewInt(rOut-b.AmountOut))
		pool.AddUint64(pool, rIn+amountIn)
		require.True(t, pool.Gt(k), "pool product decreased beyond truncation")
	})
}

func TestLpTokensForDeposit(t *testing.T) {
	lp, err := LpTokensForDeposit(100, 400, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(200), lp)

	lp, err = LpTokensForDeposit(100, 600, 1000, 5000, 200)
	require.NoError(t, err)
	require.Equal(t, uint64(20), lp, "A side is limiting")

	lp, err = LpTokensForDeposit(math.MaxUint64, math.MaxUint64, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), lp)

	_, err = LpTokensForDeposit(0, 1, 0, 0, 0)
	require.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = LpTokensForDeposit(math.MaxUint64, math.MaxUint64, 1, 1, 2)
	require.ErrorIs(t, err, model.ErrCalculationOverflow)
}

func TestWithdrawAmounts(t *testing.T) {
	a, b, err := WithdrawAmounts(50, 1000, 5000, 200)
	require.NoError(t, err)
	require.Equal(t, uint64(250), a)
	require.Equal(t, uint64(1250), b)

	_, _, err = WithdrawAmounts(201, 1000, 5000, 200)
	require.ErrorIs(t, err, model.ErrInsufficientLpBalance)
	_, _, err = WithdrawAmounts(1, 0, 0, 0)
	require.ErrorIs(t, err, model.ErrInsufficientLiquidity)
	_, _, err = WithdrawAmounts(0, 1, 1, 1)
	require.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rA := rapid.Uint64Range(1, 1<<40).Draw(t, "reserveA")
		rB := rapid.Uint64Range(1, 1<<40).Draw(t, "reserveB")
		supply := rapid.Uint64Range(1, 1<<40).Draw(t, "supply")
		a := rapid.Uint64Range(1, 1<<40).Draw(t, "amountA")
		b := rapid.Uint64Range(1, 1<<40).Draw(t, "amountB")

		lp, err := LpTokensForDeposit(a, b, rA, rB, supply)
		require.NoError(t, err)
		if lp == 0 {
			return
		}
		outA, outB, err := WithdrawAmounts(lp, rA+a, rB+b, supply+lp)
		require.NoError(t, err)
		require.LessOrEqual(t, outA, a)
		require.LessOrEqual(t, outB, b)
	})
}

func TestCheckRatio(t *testing.T) {
	require.NoError(t, CheckRatio(100, 500, 1000, 5000))
	require.NoError(t, CheckRatio(100, 505, 1000, 5000), "exactly 1% is accepted")
	require.NoError(t, CheckRatio(100, 495, 1000, 5000))
	require.ErrorIs(t, CheckRatio(100, 506, 1000, 5000), model.ErrRatioImbalance)
	require.ErrorIs(t, CheckRatio(100, 450, 1000, 5000), model.ErrRatioImbalance)
	require.ErrorIs(t, CheckRatio(0, 450, 1000, 5000), model.ErrInvalidAmount)
}

func TestPrices(t *testing.T) {
	price, err := PoolPrice(1000, 5000)
	require.NoError(t, err)
	require.Equal(t, uint64(5_000_000), price)

	_, err = PoolPrice(0, 5000)
	require.ErrorIs(t, err, model.ErrInsufficientLiquidity)

	ok, err := MeetsTarget(10, 45, 4_500_000)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = MeetsTarget(10, 44, 4_500_000)
	require.NoError(t, err)
	require.False(t, ok)

	exec, err := ExecutionPrice(1000, 4533)
	require.NoError(t, err)
	require.Equal(t, uint64(4_533_000), exec)
}

func TestPriceImpact(t *testing.T) {
	impact, err := PriceImpact(10000, 50000, 1000, 4533)
	require.NoError(t, err)
	// 1 - 4533*10000/(1000*50000) = 0.0934
	require.True(t, impact.Equal(decimal.RequireFromString("9.34")), impact.String())

	impact, err = PriceImpact(10000, 50000, 1000, 6000)
	require.NoError(t, err)
	require.True(t, impact.IsZero(), "impact is clamped at zero")
}

func TestMinimumReceived(t *testing.T) {
	minOut, err := MinimumReceived(4533, 50)
	require.NoError(t, err)
	require.Equal(t, uint64(4510), minOut)

	_, err = MinimumReceived(1, BpsScale+1)
	require.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestQuoteBundle(t *testing.T) {
	pool := model.Pool{
		TokenAMint:     model.Pubkey{1},
		TokenBMint:     model.Pubkey{2},
		ReserveA:       10000,
		ReserveB:       50000,
		TotalLpSupply:  22360,
		FeeNumerator:   3,
		FeeDenominator: 1000,
	}
	q, err := Quote(pool, true, 1000, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(4534), q.Breakdown.AmountOut)
	require.Equal(t, uint64(5_000_000), q.SpotPrice)
	require.Equal(t, uint64(4488), q.MinimumReceived)
	require.Equal(t, pool.TokenAMint, q.SellMint)
	require.Equal(t, pool.TokenBMint, q.BuyMint)
}

func TestFormatAndParseAmounts(t *testing.T) {
	require.Equal(t, "1.500000", FormatAmount(1_500_000, 6))
	require.Equal(t, "42", FormatAmount(42, 0))
	require.Equal(t, "18446744073709.551615", FormatAmount(math.MaxUint64, 6))

	v, err := ToBaseUnits("1.5", 6)
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000), v)

	_, err = ToBaseUnits("1.0000001", 6)
	require.Error(t, err)
	_, err = ToBaseUnits("-1", 6)
	require.ErrorIs(t, err, model.ErrInvalidAmount)
	_, err = ToBaseUnits("18446744073709551616", 0)
	require.ErrorIs(t, err, model.ErrCalculationOverflow)
}
