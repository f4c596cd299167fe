// Package quote holds the pure pricing functions of the exchange. All
// intermediate products are computed in 256-bit integers and narrowed back
// to u64 only at the end; a result that does not fit is reported as
// model.ErrCalculationOverflow, never wrapped.
package quote

import (
	"github.com/holiman/uint256"

	"ammCore/internal/model"
)

// PriceScale is the fixed-point scale of prices (6 decimals).
const PriceScale = 1_000_000

// BpsScale is the denominator of basis-point fractions.
const BpsScale = 10_000

func u256(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func mul(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(u256(a), u256(b))
}

// mulDiv returns floor(a*b/c). c must be non-zero.
func mulDiv(a, b, c uint64) (uint64, error) {
	q := new(uint256.Int).Div(mul(a, b), u256(c))
	return narrow(q)
}

func narrow(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, model.ErrCalculationOverflow
	}
	return x.Uint64(), nil
}

// AddU64 adds with overflow detection.
func AddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, model.ErrCalculationOverflow
	}
	return sum, nil
}

// SubU64 subtracts, failing with ErrCalculationOverflow on underflow.
func SubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, model.ErrCalculationOverflow
	}
	return a - b, nil
}
