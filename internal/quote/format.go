package quote

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"ammCore/internal/model"
)

// FormatAmount renders base units with the mint's decimals.
func FormatAmount(amount uint64, decimals uint8) string {
	value := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return value.StringFixed(int32(decimals))
}

// ToBaseUnits parses a UI amount such as "1.5" into base units.
func ToBaseUnits(text string, decimals uint8) (uint64, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", text, err)
	}
	if value.IsNegative() {
		return 0, model.ErrInvalidAmount
	}
	shifted := value.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", text, decimals)
	}
	raw := shifted.BigInt()
	if !raw.IsUint64() {
		return 0, model.ErrCalculationOverflow
	}
	return raw.Uint64(), nil
}

// FormatPrice renders a PriceScale fixed-point price.
func FormatPrice(price uint64) string {
	return FormatAmount(price, 6)
}
