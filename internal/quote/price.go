package quote

import (
	"github.com/shopspring/decimal"

	"ammCore/internal/model"
)

const impactPrecision = 18

var hundred = decimal.NewFromInt(100)

// PoolPrice is token A priced in token B, scaled by PriceScale.
func PoolPrice(reserveA, reserveB uint64) (uint64, error) {
	if reserveA == 0 {
		return 0, model.ErrInsufficientLiquidity
	}
	return mulDiv(reserveB, PriceScale, reserveA)
}

// ExecutionPrice is the realized buy units per sell unit, scaled by PriceScale.
func ExecutionPrice(amountIn, amountOut uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, model.ErrInvalidAmount
	}
	return mulDiv(amountOut, PriceScale, amountIn)
}

// MeetsTarget reports whether selling amountIn for amountOut pays at least
// targetPrice: amountOut*PriceScale >= amountIn*targetPrice.
func MeetsTarget(amountIn, amountOut, targetPrice uint64) (bool, error) {
	if amountIn == 0 || targetPrice == 0 {
		return false, model.ErrInvalidAmount
	}
	got := mul(amountOut, PriceScale)
	want := mul(amountIn, targetPrice)
	return !got.Lt(want), nil
}

// PriceImpact compares the realized price with the pre-trade spot price,
// as a percentage clamped at zero.
func PriceImpact(reserveIn, reserveOut, amountIn, amountOut uint64) (decimal.Decimal, error) {
	if amountIn == 0 {
		return decimal.Zero, model.ErrInvalidAmount
	}
	if reserveIn == 0 || reserveOut == 0 {
		return decimal.Zero, model.ErrInsufficientPoolReserves
	}
	// execution/spot = (out/in) / (rOut/rIn) = out*rIn / (in*rOut)
	num := decimal.NewFromBigInt(mul(amountOut, reserveIn).ToBig(), 0)
	den := decimal.NewFromBigInt(mul(amountIn, reserveOut).ToBig(), 0)
	ratio := num.DivRound(den, impactPrecision)

	impact := decimal.NewFromInt(1).Sub(ratio).Mul(hundred)
	if impact.IsNegative() {
		return decimal.Zero, nil
	}
	return impact, nil
}

// MinimumReceived applies a slippage allowance in basis points.
func MinimumReceived(amountOut, slippageBps uint64) (uint64, error) {
	if slippageBps > BpsScale {
		return 0, model.ErrInvalidAmount
	}
	return mulDiv(amountOut, BpsScale-slippageBps, BpsScale)
}
