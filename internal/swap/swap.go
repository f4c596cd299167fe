// Package swap executes constant-product trades against a pool record.
package swap

import (
	"ammCore/internal/model"
	"ammCore/internal/quote"
)

// Result is the outcome of a trade. Pool holds the post-trade record.
type Result struct {
	Pool      model.Pool
	AToB      bool
	AmountIn  uint64
	AmountOut uint64
	FeeAmount uint64
	SellMint  model.Pubkey
	BuyMint   model.Pubkey
}

// Execute sells amountIn on the aToB side. The input reserve grows by the
// whole amountIn, so the fee stays with liquidity providers.
func Execute(pool model.Pool, aToB bool, amountIn, minOut uint64) (Result, error) {
	if amountIn == 0 {
		return Result{}, model.ErrInvalidAmount
	}
	reserveIn, reserveOut := pool.Reserves(aToB)
	if reserveIn == 0 || reserveOut == 0 {
		return Result{}, model.ErrInsufficientPoolReserves
	}

	b, err := quote.SwapOutput(reserveIn, reserveOut, amountIn, pool.FeeNumerator, pool.FeeDenominator)
	if err != nil {
		return Result{}, err
	}
	if b.AmountOut == 0 || b.AmountOut >= reserveOut {
		return Result{}, model.ErrInsufficientLiquidity
	}
	if b.AmountOut < minOut {
		return Result{}, model.ErrSlippageTooHigh
	}

	newIn, err := quote.AddU64(reserveIn, amountIn)
	if err != nil {
		return Result{}, err
	}
	newOut := reserveOut - b.AmountOut

	next := pool
	if aToB {
		next.ReserveA, next.ReserveB = newIn, newOut
	} else {
		next.ReserveB, next.ReserveA = newIn, newOut
	}
	sell, buy := pool.MintsFor(aToB)

	return Result{
		Pool:      next,
		AToB:      aToB,
		AmountIn:  amountIn,
		AmountOut: b.AmountOut,
		FeeAmount: b.FeeAmount,
		SellMint:  sell,
		BuyMint:   buy,
	}, nil
}

// Direction maps a sell mint onto the pool's aToB flag.
func Direction(pool model.Pool, sellMint model.Pubkey) (bool, error) {
	return pool.DirectionFor(sellMint)
}

// MarketBuy spends amount of token B to buy token A.
func MarketBuy(pool model.Pool, amount, minReceived uint64) (Result, error) {
	return Execute(pool, false, amount, minReceived)
}

// MarketSell spends amount of token A to buy token B.
func MarketSell(pool model.Pool, amount, minReceived uint64) (Result, error) {
	return Execute(pool, true, amount, minReceived)
}
