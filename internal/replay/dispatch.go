package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ammCore/internal/exchange"
	"ammCore/internal/model"
)

// ErrMalformedOperation marks operations that cannot be decoded. They are
// recorded as rejections like business errors.
var ErrMalformedOperation = errors.New("malformed operation")

func decodeArgs(op model.Operation, out interface{}) error {
	if err := op.DecodeArgs(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOperation, err)
	}
	return nil
}

// rejected reports whether err is final for the operation rather than a
// failure of the replay itself.
func rejected(err error) bool {
	return model.IsDomain(err) || errors.Is(err, ErrMalformedOperation)
}

// Clock pins the service clock to the operation being replayed. A zero
// pin falls back to wall time.
type Clock struct {
	mu sync.Mutex
	at time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.at.IsZero() {
		return time.Now()
	}
	return c.at
}

// Pin sets the clock to unix seconds; zero unpins it.
func (c *Clock) Pin(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if unix == 0 {
		c.at = time.Time{}
		return
	}
	c.at = time.Unix(unix, 0).UTC()
}

// apply routes one operation to the service and returns what it produced.
func apply(ctx context.Context, svc *exchange.Service, now time.Time, op model.Operation) (interface{}, error) {
	switch op.Op {
	case model.OpDeposit:
		var args model.DepositArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.Deposit(ctx, op.User, args.Mint, args.Amount)

	case model.OpInitializePool:
		var args model.InitializePoolArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.InitializePool(ctx, exchange.InitializePoolRequest{
			Authority:       op.User,
			MintA:           args.MintA,
			MintB:           args.MintB,
			InitialDepositA: args.InitialDepositA,
			InitialDepositB: args.InitialDepositB,
			FeeNumerator:    args.FeeNumerator,
			FeeDenominator:  args.FeeDenominator,
		})

	case model.OpAddLiquidity:
		var args model.AddLiquidityArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.AddLiquidity(ctx, exchange.AddLiquidityRequest{
			Pool:        op.Pool,
			Owner:       op.User,
			AmountA:     args.AmountA,
			AmountB:     args.AmountB,
			MinLpTokens: args.MinLpTokens,
		})

	case model.OpRemoveLiquidity:
		var args model.RemoveLiquidityArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.RemoveLiquidity(ctx, exchange.RemoveLiquidityRequest{
			Pool:           op.Pool,
			Owner:          op.User,
			LpTokensToBurn: args.LpTokensToBurn,
			MinAmountA:     args.MinAmountA,
			MinAmountB:     args.MinAmountB,
		})

	case model.OpSwap:
		var args model.SwapArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.Swap(ctx, exchange.SwapRequest{
			Pool:             op.Pool,
			User:             op.User,
			AmountIn:         args.AmountIn,
			MinimumAmountOut: args.MinimumAmountOut,
			IsAToB:           args.IsAToB,
		})

	case model.OpMarketBuy, model.OpMarketSell:
		var args model.MarketArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		req := exchange.MarketRequest{Pool: op.Pool, User: op.User, Amount: args.Amount, MinReceived: args.MinReceived}
		if op.Op == model.OpMarketBuy {
			return svc.MarketBuy(ctx, req)
		}
		return svc.MarketSell(ctx, req)

	case model.OpCreateLimitOrder:
		var args model.CreateLimitOrderArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.CreateLimitOrder(ctx, exchange.CreateLimitOrderRequest{
			OrderID:        op.OrderID,
			Pool:           op.Pool,
			Owner:          op.User,
			SellToken:      args.SellToken,
			SellAmount:     args.SellAmount,
			TargetPrice:    args.TargetPrice,
			MinimumReceive: args.MinimumReceive,
			ExpiryDays:     args.ExpiryDays,
		})

	case model.OpCancelLimitOrder:
		return svc.CancelLimitOrder(ctx, op.OrderID, op.User)

	case model.OpTryExecuteLimitOrder:
		return svc.TryExecuteLimitOrder(ctx, op.OrderID)

	case model.OpInitializeRewards:
		var args model.InitializeRewardsArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.InitializeRewards(ctx, exchange.InitializeRewardsRequest{
			Authority:      op.User,
			Mint:           args.Mint,
			TotalSupply:    args.TotalSupply,
			ApyNumerator:   args.ApyNumerator,
			ApyDenominator: args.ApyDenominator,
		})

	case model.OpClaimRewards:
		return svc.ClaimRewards(ctx, op.Pool, op.User)

	case model.OpPauseRewards:
		var args model.PauseRewardsArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.PauseRewards(ctx, op.User, args.Paused, args.Reason)

	case model.OpUpdateRewardsApy:
		var args model.UpdateRewardsApyArgs
		if err := decodeArgs(op, &args); err != nil {
			return nil, err
		}
		return svc.UpdateRewardsApy(ctx, op.User, args.ApyNumerator)

	case model.OpSweep:
		return svc.Sweep(ctx, now)

	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrMalformedOperation, op.Op)
	}
}
