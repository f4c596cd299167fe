package exchange

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ammCore/internal/ledger"
	"ammCore/internal/liquidity"
	"ammCore/internal/model"
	"ammCore/internal/rewards"
)

type InitializePoolRequest struct {
	Authority       model.Pubkey
	MintA           model.Pubkey
	MintB           model.Pubkey
	InitialDepositA uint64
	InitialDepositB uint64
	FeeNumerator    uint64
	FeeDenominator  uint64
}

type AddLiquidityRequest struct {
	Pool        model.Pubkey
	Owner       model.Pubkey
	AmountA     uint64
	AmountB     uint64
	MinLpTokens uint64
}

type RemoveLiquidityRequest struct {
	Pool           model.Pubkey
	Owner          model.Pubkey
	LpTokensToBurn uint64
	MinAmountA     uint64
	MinAmountB     uint64
}

// InitializePool creates the pool for a mint pair and takes the
// authority's bootstrap deposit.
func (s *Service) InitializePool(ctx context.Context, req InitializePoolRequest) (liquidity.AddResult, error) {
	now := s.now()
	feeNum, feeDen := req.FeeNumerator, req.FeeDenominator
	if feeNum == 0 && feeDen == 0 {
		feeNum, feeDen = s.feeNum, s.feeDen
	}
	res, err := liquidity.Initialize(liquidity.InitializeParams{
		Authority:      req.Authority,
		MintA:          req.MintA,
		MintB:          req.MintB,
		DepositA:       req.InitialDepositA,
		DepositB:       req.InitialDepositB,
		FeeNumerator:   feeNum,
		FeeDenominator: feeDen,
		Now:            now,
	})
	if err != nil {
		s.observe(model.OpInitializePool, err)
		return liquidity.AddResult{}, err
	}
	pool := res.Pool

	keys := []string{
		ledger.PoolKey(pool.Address),
		ledger.AccountKey(req.Authority, pool.TokenAMint),
		ledger.AccountKey(req.Authority, pool.TokenBMint),
	}
	_, err = s.commit(ctx, model.OpInitializePool, keys, func(ctx context.Context, tx ledger.Tx) error {
		if _, err := tx.Pool(ctx, pool.Address); err == nil {
			return model.ErrPoolAlreadyExists
		} else if !errors.Is(err, model.ErrPoolNotFound) {
			return err
		}
		if err := debit(ctx, tx, req.Authority, pool.TokenAMint, res.AmountA); err != nil {
			return err
		}
		if err := debit(ctx, tx, req.Authority, pool.TokenBMint, res.AmountB); err != nil {
			return err
		}
		if err := tx.PutPool(ctx, pool); err != nil {
			return err
		}
		if err := tx.PutPosition(ctx, res.Position); err != nil {
			return err
		}
		return emit(tx, model.EventPoolCreated, pool.Address, now, model.PoolCreatedData{
			Pool:          pool.Address,
			TokenAMint:    pool.TokenAMint,
			TokenBMint:    pool.TokenBMint,
			ReserveA:      pool.ReserveA,
			ReserveB:      pool.ReserveB,
			LpTokenSupply: pool.TotalLpSupply,
			Authority:     pool.Authority,
		})
	})
	if err != nil {
		return liquidity.AddResult{}, err
	}

	s.publishPool(ctx, pool)
	s.logger.Info("pool initialized",
		zap.String("pool", pool.Address.String()),
		zap.String("token_a", pool.TokenAMint.String()),
		zap.String("token_b", pool.TokenBMint.String()),
		zap.Uint64("reserve_a", pool.ReserveA),
		zap.Uint64("reserve_b", pool.ReserveB),
		zap.Uint64("lp_supply", pool.TotalLpSupply),
	)
	return res, nil
}

// settle brings a position's rewards up to date before its share changes.
func settle(ctx context.Context, tx ledger.Tx, pool model.Pool, pos model.Position, now int64) (model.Position, error) {
	cfg, ok, err := tx.RewardConfig(ctx)
	if err != nil || !ok {
		return pos, err
	}
	return rewards.Settle(cfg, pool, pos, now)
}

func (s *Service) AddLiquidity(ctx context.Context, req AddLiquidityRequest) (liquidity.AddResult, error) {
	now := s.now()
	current, err := s.Pool(ctx, req.Pool)
	if err != nil {
		s.observe(model.OpAddLiquidity, err)
		return liquidity.AddResult{}, err
	}
	keys := []string{
		ledger.PoolKey(req.Pool),
		ledger.AccountKey(req.Owner, current.TokenAMint),
		ledger.AccountKey(req.Owner, current.TokenBMint),
	}

	var res liquidity.AddResult
	_, err = s.commit(ctx, model.OpAddLiquidity, keys, func(ctx context.Context, tx ledger.Tx) error {
		pool, err := tx.Pool(ctx, req.Pool)
		if err != nil {
			return err
		}
		pos, err := tx.Position(ctx, req.Pool, req.Owner)
		if errors.Is(err, model.ErrPositionNotFound) {
			pos = model.NewPosition(req.Pool, req.Owner)
		} else if err != nil {
			return err
		}
		if pos, err = settle(ctx, tx, pool, pos, now.Unix()); err != nil {
			return err
		}

		if res, err = liquidity.Add(pool, pos, req.AmountA, req.AmountB, req.MinLpTokens, now); err != nil {
			return err
		}
		if err := debit(ctx, tx, req.Owner, pool.TokenAMint, res.AmountA); err != nil {
			return err
		}
		if err := debit(ctx, tx, req.Owner, pool.TokenBMint, res.AmountB); err != nil {
			return err
		}
		if err := tx.PutPool(ctx, res.Pool); err != nil {
			return err
		}
		if err := tx.PutPosition(ctx, res.Position); err != nil {
			return err
		}
		return emit(tx, model.EventLiquidityAdded, pool.Address, now, model.LiquidityAddedData{
			User:           req.Owner,
			Pool:           pool.Address,
			AmountA:        res.AmountA,
			AmountB:        res.AmountB,
			LpTokensMinted: res.Minted,
			NewReserveA:    res.Pool.ReserveA,
			NewReserveB:    res.Pool.ReserveB,
		})
	})
	if err != nil {
		return liquidity.AddResult{}, err
	}

	s.publishPool(ctx, res.Pool)
	s.logger.Info("liquidity added",
		zap.String("pool", req.Pool.String()),
		zap.String("owner", req.Owner.String()),
		zap.Uint64("amount_a", res.AmountA),
		zap.Uint64("amount_b", res.AmountB),
		zap.Uint64("lp_minted", res.Minted),
	)
	return res, nil
}

func (s *Service) RemoveLiquidity(ctx context.Context, req RemoveLiquidityRequest) (liquidity.RemoveResult, error) {
	now := s.now()
	current, err := s.Pool(ctx, req.Pool)
	if err != nil {
		s.observe(model.OpRemoveLiquidity, err)
		return liquidity.RemoveResult{}, err
	}
	keys := []string{
		ledger.PoolKey(req.Pool),
		ledger.AccountKey(req.Owner, current.TokenAMint),
		ledger.AccountKey(req.Owner, current.TokenBMint),
	}

	var res liquidity.RemoveResult
	_, err = s.commit(ctx, model.OpRemoveLiquidity, keys, func(ctx context.Context, tx ledger.Tx) error {
		pool, err := tx.Pool(ctx, req.Pool)
		if err != nil {
			return err
		}
		pos, err := tx.Position(ctx, req.Pool, req.Owner)
		if errors.Is(err, model.ErrPositionNotFound) {
			return model.ErrInsufficientLpBalance
		} else if err != nil {
			return err
		}
		if pos, err = settle(ctx, tx, pool, pos, now.Unix()); err != nil {
			return err
		}

		if res, err = liquidity.Remove(pool, pos, req.LpTokensToBurn, req.MinAmountA, req.MinAmountB); err != nil {
			return err
		}
		if err := credit(ctx, tx, req.Owner, pool.TokenAMint, res.AmountA); err != nil {
			return err
		}
		if err := credit(ctx, tx, req.Owner, pool.TokenBMint, res.AmountB); err != nil {
			return err
		}
		if err := tx.PutPool(ctx, res.Pool); err != nil {
			return err
		}
		if err := tx.PutPosition(ctx, res.Position); err != nil {
			return err
		}
		return emit(tx, model.EventLiquidityRemoved, pool.Address, now, model.LiquidityRemovedData{
			User:            req.Owner,
			Pool:            pool.Address,
			LpTokensBurned:  res.Burned,
			AmountAReceived: res.AmountA,
			AmountBReceived: res.AmountB,
			NewReserveA:     res.Pool.ReserveA,
			NewReserveB:     res.Pool.ReserveB,
		})
	})
	if err != nil {
		return liquidity.RemoveResult{}, err
	}

	s.publishPool(ctx, res.Pool)
	s.logger.Info("liquidity removed",
		zap.String("pool", req.Pool.String()),
		zap.String("owner", req.Owner.String()),
		zap.Uint64("lp_burned", res.Burned),
		zap.Uint64("amount_a", res.AmountA),
		zap.Uint64("amount_b", res.AmountB),
	)
	return res, nil
}
