package exchange

import (
	"context"

	"go.uber.org/zap"

	"ammCore/internal/ledger"
	"ammCore/internal/model"
	"ammCore/internal/swap"
)

type SwapRequest struct {
	Pool             model.Pubkey
	User             model.Pubkey
	AmountIn         uint64
	MinimumAmountOut uint64
	IsAToB           bool
}

// MarketRequest is a market order. Amount is what the user spends.
type MarketRequest struct {
	Pool        model.Pubkey
	User        model.Pubkey
	Amount      uint64
	MinReceived uint64
}

func (s *Service) Swap(ctx context.Context, req SwapRequest) (swap.Result, error) {
	return s.trade(ctx, model.OpSwap, req)
}

// MarketBuy spends token B to buy token A.
func (s *Service) MarketBuy(ctx context.Context, req MarketRequest) (swap.Result, error) {
	return s.trade(ctx, model.OpMarketBuy, SwapRequest{
		Pool:             req.Pool,
		User:             req.User,
		AmountIn:         req.Amount,
		MinimumAmountOut: req.MinReceived,
		IsAToB:           false,
	})
}

// MarketSell spends token A to buy token B.
func (s *Service) MarketSell(ctx context.Context, req MarketRequest) (swap.Result, error) {
	return s.trade(ctx, model.OpMarketSell, SwapRequest{
		Pool:             req.Pool,
		User:             req.User,
		AmountIn:         req.Amount,
		MinimumAmountOut: req.MinReceived,
		IsAToB:           true,
	})
}

func (s *Service) trade(ctx context.Context, op string, req SwapRequest) (swap.Result, error) {
	now := s.now()
	current, err := s.Pool(ctx, req.Pool)
	if err != nil {
		s.observe(op, err)
		return swap.Result{}, err
	}
	sell, buy := current.MintsFor(req.IsAToB)
	keys := []string{
		ledger.PoolKey(req.Pool),
		ledger.AccountKey(req.User, sell),
		ledger.AccountKey(req.User, buy),
	}

	var res swap.Result
	_, err = s.commit(ctx, op, keys, func(ctx context.Context, tx ledger.Tx) error {
		pool, err := tx.Pool(ctx, req.Pool)
		if err != nil {
			return err
		}
		if res, err = swap.Execute(pool, req.IsAToB, req.AmountIn, req.MinimumAmountOut); err != nil {
			return err
		}
		if err := debit(ctx, tx, req.User, res.SellMint, res.AmountIn); err != nil {
			return err
		}
		if err := credit(ctx, tx, req.User, res.BuyMint, res.AmountOut); err != nil {
			return err
		}
		if err := tx.PutPool(ctx, res.Pool); err != nil {
			return err
		}
		return emit(tx, model.EventSwapExecuted, pool.Address, now, swapData(req.User, res))
	})
	if err != nil {
		return swap.Result{}, err
	}

	s.publishPool(ctx, res.Pool)
	s.observeSwap(res)
	s.logger.Info("swap executed",
		zap.String("op", op),
		zap.String("pool", req.Pool.String()),
		zap.String("user", req.User.String()),
		zap.Bool("a_to_b", res.AToB),
		zap.Uint64("amount_in", res.AmountIn),
		zap.Uint64("amount_out", res.AmountOut),
		zap.Uint64("fee", res.FeeAmount),
	)
	return res, nil
}

func swapData(user model.Pubkey, res swap.Result) model.SwapExecutedData {
	return model.SwapExecutedData{
		User:        user,
		Pool:        res.Pool.Address,
		AmountIn:    res.AmountIn,
		AmountOut:   res.AmountOut,
		FeeAmount:   res.FeeAmount,
		IsAToB:      res.AToB,
		NewReserveA: res.Pool.ReserveA,
		NewReserveB: res.Pool.ReserveB,
	}
}

func (s *Service) observeSwap(res swap.Result) {
	if s.metrics == nil {
		return
	}
	pool, sell := res.Pool.Address.String(), res.SellMint.String()
	s.metrics.SwapVolume.WithLabelValues(pool, sell).Add(float64(res.AmountIn))
	s.metrics.SwapFees.WithLabelValues(pool, sell).Add(float64(res.FeeAmount))
}
