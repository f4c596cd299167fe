package model

// SecondsPerYear is the accrual year used for reward rates.
const SecondsPerYear = 31_536_000

// RewardConfig configures liquidity-provider incentives paid in Mint.
type RewardConfig struct {
	Mint             Pubkey `json:"mint"`
	Authority        Pubkey `json:"authority"`
	TotalSupply      uint64 `json:"total_supply,string"`
	MintedSoFar      uint64 `json:"minted_so_far,string"`
	RewardsPerSecond uint64 `json:"rewards_per_second,string"`
	ApyNumerator     uint64 `json:"apy_numerator"`
	ApyDenominator   uint64 `json:"apy_denominator"`
	StartTimestamp   int64  `json:"start_timestamp"`
	IsPaused         bool   `json:"is_paused"`
	Bump             uint8  `json:"bump"`
}

// Remaining is the part of TotalSupply not yet paid out.
func (c RewardConfig) Remaining() uint64 {
	if c.MintedSoFar >= c.TotalSupply {
		return 0
	}
	return c.TotalSupply - c.MintedSoFar
}
