package model

// Position tracks one owner's share of one pool and its reward bookkeeping.
type Position struct {
	Owner              Pubkey `json:"owner"`
	Pool               Pubkey `json:"pool"`
	LpTokens           uint64 `json:"lp_tokens,string"`
	DepositTimestamp   int64  `json:"deposit_timestamp"`
	LastClaimTimestamp int64  `json:"last_claim_timestamp"`
	TotalRewardClaimed uint64 `json:"total_reward_claimed,string"`
	PendingRewards     uint64 `json:"pending_rewards,string"`
	Bump               uint8  `json:"bump"`
}

// NewPosition returns an empty position for (pool, owner).
func NewPosition(pool, owner Pubkey) Position {
	return Position{Owner: owner, Pool: pool}
}

func (p Position) Address() Pubkey {
	return DerivePosition(p.Pool, p.Owner)
}
