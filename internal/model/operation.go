package model

import (
	"encoding/json"
	"fmt"
)

// Operation names accepted by the replay dispatcher.
const (
	OpInitializePool       = "initialize_pool"
	OpAddLiquidity         = "add_liquidity"
	OpRemoveLiquidity      = "remove_liquidity"
	OpSwap                 = "swap"
	OpMarketBuy            = "market_buy"
	OpMarketSell           = "market_sell"
	OpCreateLimitOrder     = "create_limit_order"
	OpCancelLimitOrder     = "cancel_limit_order"
	OpTryExecuteLimitOrder = "try_execute_limit_order"
	OpDeposit              = "deposit"
	OpInitializeRewards    = "initialize_rewards"
	OpClaimRewards         = "claim_rewards"
	OpPauseRewards         = "pause_rewards"
	OpUpdateRewardsApy     = "update_rewards_apy"
	OpSweep                = "sweep"
)

// Operation is one replayable request. At is unix seconds; zero means
// the replayer's wall clock.
type Operation struct {
	Seq     uint64          `json:"seq"`
	Op      string          `json:"op"`
	Pool    Pubkey          `json:"pool"`
	User    Pubkey          `json:"user"`
	At      int64           `json:"at,omitempty"`
	OrderID string          `json:"order_id,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// NewOperation marshals args into an Operation.
func NewOperation(op string, pool, user Pubkey, args interface{}) (Operation, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Operation{}, fmt.Errorf("marshal %s args: %w", op, err)
	}
	return Operation{Op: op, Pool: pool, User: user, Args: raw}, nil
}

// DecodeArgs unmarshals Args into out. Missing args decode as the zero value.
func (o Operation) DecodeArgs(out interface{}) error {
	if len(o.Args) == 0 {
		return nil
	}
	if err := json.Unmarshal(o.Args, out); err != nil {
		return fmt.Errorf("decode %s args: %w", o.Op, err)
	}
	return nil
}

type InitializePoolArgs struct {
	MintA           Pubkey `json:"mint_a"`
	MintB           Pubkey `json:"mint_b"`
	InitialDepositA uint64 `json:"initial_deposit_a"`
	InitialDepositB uint64 `json:"initial_deposit_b"`
	FeeNumerator    uint64 `json:"fee_numerator,omitempty"`
	FeeDenominator  uint64 `json:"fee_denominator,omitempty"`
}

type AddLiquidityArgs struct {
	AmountA     uint64 `json:"amount_a"`
	AmountB     uint64 `json:"amount_b"`
	MinLpTokens uint64 `json:"min_lp_tokens"`
}

type RemoveLiquidityArgs struct {
	LpTokensToBurn uint64 `json:"lp_tokens_to_burn"`
	MinAmountA     uint64 `json:"min_amount_a"`
	MinAmountB     uint64 `json:"min_amount_b"`
}

type SwapArgs struct {
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
	IsAToB           bool   `json:"is_a_to_b"`
}

// MarketArgs covers market_buy (Amount of token B in) and market_sell
// (Amount of token A in).
type MarketArgs struct {
	Amount      uint64 `json:"amount"`
	MinReceived uint64 `json:"min_received"`
}

type CreateLimitOrderArgs struct {
	SellToken      Pubkey `json:"sell_token"`
	SellAmount     uint64 `json:"sell_amount"`
	TargetPrice    uint64 `json:"target_price"`
	MinimumReceive uint64 `json:"minimum_receive"`
	ExpiryDays     int64  `json:"expiry_days"`
}

type DepositArgs struct {
	Mint   Pubkey `json:"mint"`
	Amount uint64 `json:"amount"`
}

type InitializeRewardsArgs struct {
	Mint           Pubkey `json:"mint"`
	TotalSupply    uint64 `json:"total_supply"`
	ApyNumerator   uint64 `json:"apy_numerator"`
	ApyDenominator uint64 `json:"apy_denominator"`
}

type PauseRewardsArgs struct {
	Paused bool   `json:"paused"`
	Reason string `json:"reason,omitempty"`
}

type UpdateRewardsApyArgs struct {
	ApyNumerator uint64 `json:"apy_numerator"`
}
