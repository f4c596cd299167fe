package quote

import (
	"github.com/holiman/uint256"

	"ammCore/internal/model"
)

// RatioTolerancePct is the allowed relative deviation of a deposit from the pool ratio.
const RatioTolerancePct = 1

// LpTokensForDeposit returns the shares minted for a deposit. The first
// deposit mints floor(sqrt(a*b)); later deposits mint the smaller of the
// two ratio-implied share counts.
func LpTokensForDeposit(amountA, amountB, reserveA, reserveB, totalSupply uint64) (uint64, error) {
	if amountA == 0 || amountB == 0 {
		return 0, model.ErrInvalidAmount
	}
	if totalSupply == 0 {
		root := new(uint256.Int).Sqrt(mul(amountA, amountB))
		return narrow(root)
	}
	if reserveA == 0 || reserveB == 0 {
		return 0, model.ErrInsufficientPoolReserves
	}

	fromA := new(uint256.Int).Div(mul(amountA, totalSupply), u256(reserveA))
	fromB := new(uint256.Int).Div(mul(amountB, totalSupply), u256(reserveB))
	if fromB.Lt(fromA) {
		return narrow(fromB)
	}
	return narrow(fromA)
}

// WithdrawAmounts returns the reserves released by burning lp shares.
func WithdrawAmounts(lp, reserveA, reserveB, totalSupply uint64) (uint64, uint64, error) {
	if lp == 0 {
		return 0, 0, model.ErrInvalidAmount
	}
	if totalSupply == 0 {
		return 0, 0, model.ErrInsufficientLiquidity
	}
	if lp > totalSupply {
		return 0, 0, model.ErrInsufficientLpBalance
	}
	amountA, err := mulDiv(lp, reserveA, totalSupply)
	if err != nil {
		return 0, 0, err
	}
	amountB, err := mulDiv(lp, reserveB, totalSupply)
	if err != nil {
		return 0, 0, err
	}
	return amountA, amountB, nil
}

// CheckRatio rejects a deposit whose B/A ratio deviates from the pool's
// by more than RatioTolerancePct, relative to the pool ratio. The
// comparison is exact: |aB*rA - rB*aA| * 100 <= tol * rB*aA.
func CheckRatio(amountA, amountB, reserveA, reserveB uint64) error {
	if amountA == 0 || amountB == 0 {
		return model.ErrInvalidAmount
	}
	if reserveA == 0 || reserveB == 0 {
		return model.ErrInsufficientPoolReserves
	}
	provided := mul(amountB, reserveA)
	expected := mul(reserveB, amountA)

	diff := new(uint256.Int)
	if provided.Gt(expected) {
		diff.Sub(provided, expected)
	} else {
		diff.Sub(expected, provided)
	}
	lhs := new(uint256.Int).Mul(diff, u256(100))
	rhs := new(uint256.Int).Mul(expected, u256(RatioTolerancePct))
	if lhs.Gt(rhs) {
		return model.ErrRatioImbalance
	}
	return nil
}
