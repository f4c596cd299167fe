package model

// Event kinds as written to the event log.
const (
	EventPoolCreated          = "pool_created"
	EventLiquidityAdded       = "liquidity_added"
	EventLiquidityRemoved     = "liquidity_removed"
	EventSwapExecuted         = "swap_executed"
	EventLimitOrderCreated    = "limit_order_created"
	EventLimitOrderCancelled  = "limit_order_cancelled"
	EventLimitOrderExecuted   = "limit_order_executed"
	EventLimitOrderExpired    = "limit_order_expired"
	EventRewardsClaimed       = "rewards_claimed"
	EventRewardsConfigUpdated = "rewards_config_updated"
	EventRewardsPaused        = "rewards_paused"
	EventDeposit              = "deposit"
)

// PoolCreatedData is emitted once per pool.
type PoolCreatedData struct {
	Pool          Pubkey `json:"pool"`
	TokenAMint    Pubkey `json:"token_a_mint"`
	TokenBMint    Pubkey `json:"token_b_mint"`
	ReserveA      uint64 `json:"reserve_a,string"`
	ReserveB      uint64 `json:"reserve_b,string"`
	LpTokenSupply uint64 `json:"lp_token_supply,string"`
	Authority     Pubkey `json:"authority"`
}

// LiquidityAddedData is the payload of a deposit.
type LiquidityAddedData struct {
	User           Pubkey `json:"user"`
	Pool           Pubkey `json:"pool"`
	AmountA        uint64 `json:"amount_a,string"`
	AmountB        uint64 `json:"amount_b,string"`
	LpTokensMinted uint64 `json:"lp_tokens_minted,string"`
	NewReserveA    uint64 `json:"new_reserve_a,string"`
	NewReserveB    uint64 `json:"new_reserve_b,string"`
}

// LiquidityRemovedData is the payload of a withdrawal.
type LiquidityRemovedData struct {
	User            Pubkey `json:"user"`
	Pool            Pubkey `json:"pool"`
	LpTokensBurned  uint64 `json:"lp_tokens_burned,string"`
	AmountAReceived uint64 `json:"amount_a_received,string"`
	AmountBReceived uint64 `json:"amount_b_received,string"`
	NewReserveA     uint64 `json:"new_reserve_a,string"`
	NewReserveB     uint64 `json:"new_reserve_b,string"`
}

// SwapExecutedData is the payload of a swap, market order or order fill.
type SwapExecutedData struct {
	User        Pubkey `json:"user"`
	Pool        Pubkey `json:"pool"`
	AmountIn    uint64 `json:"amount_in,string"`
	AmountOut   uint64 `json:"amount_out,string"`
	FeeAmount   uint64 `json:"fee_amount,string"`
	IsAToB      bool   `json:"is_a_to_b"`
	NewReserveA uint64 `json:"new_reserve_a,string"`
	NewReserveB uint64 `json:"new_reserve_b,string"`
}

type LimitOrderCreatedData struct {
	OrderID        string `json:"order_id"`
	Owner          Pubkey `json:"owner"`
	Pool           Pubkey `json:"pool"`
	SellToken      Pubkey `json:"sell_token"`
	BuyToken       Pubkey `json:"buy_token"`
	SellAmount     uint64 `json:"sell_amount,string"`
	TargetPrice    uint64 `json:"target_price,string"`
	MinimumReceive uint64 `json:"minimum_receive,string"`
	ExpiresAt      int64  `json:"expires_at"`
}

type LimitOrderCancelledData struct {
	OrderID        string `json:"order_id"`
	Owner          Pubkey `json:"owner"`
	RefundedAmount uint64 `json:"refunded_amount,string"`
	CancelledAt    int64  `json:"cancelled_at"`
}

type LimitOrderExecutedData struct {
	OrderID        string `json:"order_id"`
	Owner          Pubkey `json:"owner"`
	Pool           Pubkey `json:"pool"`
	SellAmount     uint64 `json:"sell_amount,string"`
	ReceiveAmount  uint64 `json:"receive_amount,string"`
	ExecutionPrice uint64 `json:"execution_price,string"`
	ExecutedAt     int64  `json:"executed_at"`
}

type LimitOrderExpiredData struct {
	OrderID        string `json:"order_id"`
	Owner          Pubkey `json:"owner"`
	RefundedAmount uint64 `json:"refunded_amount,string"`
	ExpiredAt      int64  `json:"expired_at"`
}

type RewardsClaimedData struct {
	User                 Pubkey `json:"user"`
	Position             Pubkey `json:"position"`
	Pool                 Pubkey `json:"pool"`
	RewardsAmount        uint64 `json:"rewards_amount,string"`
	TimeElapsed          int64  `json:"time_elapsed"`
	ClaimedAt            int64  `json:"claimed_at"`
	TotalClaimedLifetime uint64 `json:"total_claimed_lifetime,string"`
}

type RewardsConfigUpdatedData struct {
	PreviousApyNumerator uint64 `json:"previous_apy_numerator"`
	NewApyNumerator      uint64 `json:"new_apy_numerator"`
	NewRewardsPerSecond  uint64 `json:"new_rewards_per_second,string"`
	UpdatedAt            int64  `json:"updated_at"`
	UpdatedBy            Pubkey `json:"updated_by"`
}

type RewardsPausedData struct {
	IsPaused bool   `json:"is_paused"`
	PausedAt int64  `json:"paused_at"`
	PausedBy Pubkey `json:"paused_by"`
	Reason   string `json:"reason,omitempty"`
}

type DepositData struct {
	Owner   Pubkey `json:"owner"`
	Mint    Pubkey `json:"mint"`
	Amount  uint64 `json:"amount,string"`
	Balance uint64 `json:"balance,string"`
}
