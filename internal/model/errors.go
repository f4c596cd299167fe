package model

import (
	"errors"
	"fmt"
)

// Error is a business rejection. Codes are stable and match the program's
// published error table.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

func newError(code uint32, name, msg string) *Error {
	return &Error{Code: code, Name: name, Msg: msg}
}

var (
	ErrInvalidInitialDeposit    = newError(6000, "InvalidInitialDeposit", "initial deposits must be greater than zero")
	ErrInsufficientLiquidity    = newError(6001, "InsufficientLiquidity", "insufficient liquidity in pool")
	ErrSlippageTooHigh          = newError(6002, "SlippageTooHigh", "slippage tolerance exceeded")
	ErrInvalidFeeParameters     = newError(6003, "InvalidFeeParameters", "invalid fee parameters")
	ErrCalculationOverflow      = newError(6004, "CalculationOverflow", "overflow detected in calculation")
	ErrRatioImbalance           = newError(6005, "RatioImbalance", "pool ratio imbalance exceeds tolerance")
	ErrInsufficientBalance      = newError(6006, "InsufficientBalance", "insufficient user token balance")
	ErrInsufficientLpBalance    = newError(6007, "InsufficientLpBalance", "insufficient LP token balance")
	ErrInvalidAmount            = newError(6008, "InvalidAmount", "invalid amount: must be greater than zero")
	ErrInsufficientPoolReserves = newError(6009, "InsufficientPoolReserves", "insufficient pool reserves")
	ErrOrderNotFound            = newError(6010, "OrderNotFound", "limit order not found")
	ErrInvalidOrderStatus       = newError(6011, "InvalidOrderStatus", "invalid order status for this operation")
	ErrOrderExpired             = newError(6012, "OrderExpired", "limit order has expired")
	ErrUnauthorizedOrderOwner   = newError(6013, "UnauthorizedOrderOwner", "only order owner can cancel")
	ErrPriceConditionNotMet     = newError(6014, "PriceConditionNotMet", "price condition not met for execution")
	ErrInvalidExpiryTime        = newError(6015, "InvalidExpiryTime", "invalid expiry time")
	ErrInvalidAuthority         = newError(6018, "InvalidAuthority", "invalid authority: must be configured authority")

	ErrPoolNotFound      = newError(6100, "PoolNotFound", "pool not found")
	ErrPoolAlreadyExists = newError(6101, "PoolAlreadyExists", "pool already exists for this mint pair")
	ErrIdenticalMints    = newError(6102, "IdenticalMints", "pool mints must differ")
	ErrInvalidTokenMint  = newError(6103, "InvalidTokenMint", "mint does not belong to pool")
	ErrRewardsPaused     = newError(6104, "RewardsPaused", "rewards are paused")
	ErrPositionNotFound  = newError(6105, "PositionNotFound", "liquidity position not found")

	ErrRewardsAlreadyInitialized = newError(6106, "RewardsAlreadyInitialized", "rewards are already configured")
	ErrRewardsNotInitialized     = newError(6107, "RewardsNotInitialized", "rewards are not configured")
)

var allErrors = []*Error{
	ErrInvalidInitialDeposit, ErrInsufficientLiquidity, ErrSlippageTooHigh,
	ErrInvalidFeeParameters, ErrCalculationOverflow, ErrRatioImbalance,
	ErrInsufficientBalance, ErrInsufficientLpBalance, ErrInvalidAmount,
	ErrInsufficientPoolReserves, ErrOrderNotFound, ErrInvalidOrderStatus,
	ErrOrderExpired, ErrUnauthorizedOrderOwner, ErrPriceConditionNotMet,
	ErrInvalidExpiryTime, ErrInvalidAuthority, ErrPoolNotFound,
	ErrPoolAlreadyExists, ErrIdenticalMints, ErrInvalidTokenMint,
	ErrRewardsPaused, ErrPositionNotFound, ErrRewardsAlreadyInitialized,
	ErrRewardsNotInitialized,
}

// ErrorByCode looks up a business error by its numeric code.
func ErrorByCode(code uint32) (*Error, bool) {
	for _, e := range allErrors {
		if e.Code == code {
			return e, true
		}
	}
	return nil, false
}

// IsDomain reports whether err carries a business rejection. Anything else
// came from infrastructure and may be worth retrying.
func IsDomain(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

// CodeOf returns the business code carried by err, or 0.
func CodeOf(err error) uint32 {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return 0
}
