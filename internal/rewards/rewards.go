// Package rewards accrues liquidity-provider incentives. A position earns
// RewardsPerSecond scaled by its share of the pool's LP supply. Rewards
// are settled into the position whenever its share changes, so a deposit
// never re-prices time that already elapsed.
package rewards

import (
	"github.com/holiman/uint256"

	"ammCore/internal/model"
	"ammCore/internal/quote"
)

// ClaimResult is a committed claim.
type ClaimResult struct {
	Config      model.RewardConfig
	Position    model.Position
	Amount      uint64
	TimeElapsed int64
}

// RatePerSecond converts an APY fraction of totalSupply into a per-second
// emission, floored.
func RatePerSecond(totalSupply, apyNum, apyDen uint64) (uint64, error) {
	if apyDen == 0 {
		return 0, model.ErrInvalidAmount
	}
	rate := new(uint256.Int).Mul(uint256.NewInt(totalSupply), uint256.NewInt(apyNum))
	rate.Div(rate, uint256.NewInt(apyDen))
	rate.Div(rate, uint256.NewInt(model.SecondsPerYear))
	if !rate.IsUint64() {
		return 0, model.ErrCalculationOverflow
	}
	return rate.Uint64(), nil
}

// NewConfig builds an unpaused config starting at now.
func NewConfig(authority, mint model.Pubkey, totalSupply, apyNum, apyDen uint64, now int64) (model.RewardConfig, error) {
	if totalSupply == 0 {
		return model.RewardConfig{}, model.ErrInvalidAmount
	}
	rate, err := RatePerSecond(totalSupply, apyNum, apyDen)
	if err != nil {
		return model.RewardConfig{}, err
	}
	return model.RewardConfig{
		Mint:             mint,
		Authority:        authority,
		TotalSupply:      totalSupply,
		RewardsPerSecond: rate,
		ApyNumerator:     apyNum,
		ApyDenominator:   apyDen,
		StartTimestamp:   now,
	}, nil
}

func elapsedSince(cfg model.RewardConfig, position model.Position, now int64) int64 {
	from := position.LastClaimTimestamp
	if cfg.StartTimestamp > from {
		from = cfg.StartTimestamp
	}
	if now <= from {
		return 0
	}
	return now - from
}

// Accrue returns the rewards earned since the position's last settlement.
func Accrue(cfg model.RewardConfig, pool model.Pool, position model.Position, now int64) (uint64, error) {
	if cfg.IsPaused || pool.TotalLpSupply == 0 || position.LpTokens == 0 {
		return 0, nil
	}
	elapsed := elapsedSince(cfg, position, now)
	if elapsed == 0 {
		return 0, nil
	}
	amount := new(uint256.Int).Mul(uint256.NewInt(cfg.RewardsPerSecond), uint256.NewInt(uint64(elapsed)))
	amount.Mul(amount, uint256.NewInt(position.LpTokens))
	amount.Div(amount, uint256.NewInt(pool.TotalLpSupply))
	if !amount.IsUint64() {
		return 0, model.ErrCalculationOverflow
	}
	return amount.Uint64(), nil
}

// Settle moves accrued rewards into PendingRewards and restarts the clock.
// Time spent paused is not carried forward.
func Settle(cfg model.RewardConfig, pool model.Pool, position model.Position, now int64) (model.Position, error) {
	accrued, err := Accrue(cfg, pool, position, now)
	if err != nil {
		return position, err
	}
	next := position
	if next.PendingRewards, err = quote.AddU64(position.PendingRewards, accrued); err != nil {
		return position, err
	}
	if now > next.LastClaimTimestamp {
		next.LastClaimTimestamp = now
	}
	return next, nil
}

// Claim settles the position and pays what the remaining supply allows.
// Anything above the remaining supply stays pending.
func Claim(cfg model.RewardConfig, pool model.Pool, position model.Position, now int64) (ClaimResult, error) {
	if cfg.IsPaused {
		return ClaimResult{}, model.ErrRewardsPaused
	}
	elapsed := elapsedSince(cfg, position, now)
	settled, err := Settle(cfg, pool, position, now)
	if err != nil {
		return ClaimResult{}, err
	}

	payable := settled.PendingRewards
	if remaining := cfg.Remaining(); payable > remaining {
		payable = remaining
	}
	if payable == 0 {
		return ClaimResult{}, model.ErrInvalidAmount
	}

	settled.PendingRewards -= payable
	if settled.TotalRewardClaimed, err = quote.AddU64(settled.TotalRewardClaimed, payable); err != nil {
		return ClaimResult{}, err
	}
	next := cfg
	next.MintedSoFar += payable

	return ClaimResult{
		Config:      next,
		Position:    settled,
		Amount:      payable,
		TimeElapsed: elapsed,
	}, nil
}

// SetPaused toggles emission. Only the configured authority may call it.
func SetPaused(cfg model.RewardConfig, authority model.Pubkey, paused bool) (model.RewardConfig, error) {
	if authority != cfg.Authority {
		return cfg, model.ErrInvalidAuthority
	}
	cfg.IsPaused = paused
	return cfg, nil
}

// UpdateApy replaces the APY numerator and recomputes the emission rate.
func UpdateApy(cfg model.RewardConfig, authority model.Pubkey, apyNum uint64) (model.RewardConfig, error) {
	if authority != cfg.Authority {
		return cfg, model.ErrInvalidAuthority
	}
	rate, err := RatePerSecond(cfg.TotalSupply, apyNum, cfg.ApyDenominator)
	if err != nil {
		return cfg, err
	}
	cfg.ApyNumerator = apyNum
	cfg.RewardsPerSecond = rate
	return cfg, nil
}
