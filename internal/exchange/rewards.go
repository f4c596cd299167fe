package exchange

import (
	"context"

	"go.uber.org/zap"

	"ammCore/internal/ledger"
	"ammCore/internal/model"
	"ammCore/internal/rewards"
)

type InitializeRewardsRequest struct {
	Authority      model.Pubkey
	Mint           model.Pubkey
	TotalSupply    uint64
	ApyNumerator   uint64
	ApyDenominator uint64
}

func (s *Service) InitializeRewards(ctx context.Context, req InitializeRewardsRequest) (model.RewardConfig, error) {
	now := s.now()
	var cfg model.RewardConfig
	_, err := s.commit(ctx, model.OpInitializeRewards, []string{ledger.RewardsKey()}, func(ctx context.Context, tx ledger.Tx) error {
		if _, ok, err := tx.RewardConfig(ctx); err != nil {
			return err
		} else if ok {
			return model.ErrRewardsAlreadyInitialized
		}
		var err error
		if cfg, err = rewards.NewConfig(req.Authority, req.Mint, req.TotalSupply, req.ApyNumerator, req.ApyDenominator, now.Unix()); err != nil {
			return err
		}
		if err := tx.PutRewardConfig(ctx, cfg); err != nil {
			return err
		}
		return emit(tx, model.EventRewardsConfigUpdated, model.Pubkey{}, now, model.RewardsConfigUpdatedData{
			NewApyNumerator:     cfg.ApyNumerator,
			NewRewardsPerSecond: cfg.RewardsPerSecond,
			UpdatedAt:           now.Unix(),
			UpdatedBy:           req.Authority,
		})
	})
	if err != nil {
		return model.RewardConfig{}, err
	}
	s.logger.Info("rewards initialized",
		zap.String("mint", cfg.Mint.String()),
		zap.Uint64("total_supply", cfg.TotalSupply),
		zap.Uint64("rewards_per_second", cfg.RewardsPerSecond),
	)
	return cfg, nil
}

// ClaimRewards pays a position's accrued rewards into the owner's
// balance of the reward mint.
func (s *Service) ClaimRewards(ctx context.Context, pool, owner model.Pubkey) (rewards.ClaimResult, error) {
	now := s.now()
	current, err := s.RewardConfig(ctx)
	if err != nil {
		s.observe(model.OpClaimRewards, err)
		return rewards.ClaimResult{}, err
	}
	keys := []string{
		ledger.PoolKey(pool),
		ledger.RewardsKey(),
		ledger.AccountKey(owner, current.Mint),
	}

	var res rewards.ClaimResult
	_, err = s.commit(ctx, model.OpClaimRewards, keys, func(ctx context.Context, tx ledger.Tx) error {
		cfg, ok, err := tx.RewardConfig(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrRewardsNotInitialized
		}
		p, err := tx.Pool(ctx, pool)
		if err != nil {
			return err
		}
		pos, err := tx.Position(ctx, pool, owner)
		if err != nil {
			return err
		}
		if res, err = rewards.Claim(cfg, p, pos, now.Unix()); err != nil {
			return err
		}
		if err := tx.PutRewardConfig(ctx, res.Config); err != nil {
			return err
		}
		if err := tx.PutPosition(ctx, res.Position); err != nil {
			return err
		}
		if err := credit(ctx, tx, owner, cfg.Mint, res.Amount); err != nil {
			return err
		}
		return emit(tx, model.EventRewardsClaimed, pool, now, model.RewardsClaimedData{
			User:                 owner,
			Position:             pos.Address(),
			Pool:                 pool,
			RewardsAmount:        res.Amount,
			TimeElapsed:          res.TimeElapsed,
			ClaimedAt:            now.Unix(),
			TotalClaimedLifetime: res.Position.TotalRewardClaimed,
		})
	})
	if err != nil {
		return rewards.ClaimResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RewardsPaid.Add(float64(res.Amount))
	}
	s.logger.Info("rewards claimed",
		zap.String("pool", pool.String()),
		zap.String("owner", owner.String()),
		zap.Uint64("amount", res.Amount),
		zap.Int64("elapsed_seconds", res.TimeElapsed),
	)
	return res, nil
}

func (s *Service) PauseRewards(ctx context.Context, authority model.Pubkey, paused bool, reason string) (model.RewardConfig, error) {
	now := s.now()
	var cfg model.RewardConfig
	_, err := s.commit(ctx, model.OpPauseRewards, []string{ledger.RewardsKey()}, func(ctx context.Context, tx ledger.Tx) error {
		current, ok, err := tx.RewardConfig(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrRewardsNotInitialized
		}
		if cfg, err = rewards.SetPaused(current, authority, paused); err != nil {
			return err
		}
		if err := tx.PutRewardConfig(ctx, cfg); err != nil {
			return err
		}
		return emit(tx, model.EventRewardsPaused, model.Pubkey{}, now, model.RewardsPausedData{
			IsPaused: paused,
			PausedAt: now.Unix(),
			PausedBy: authority,
			Reason:   reason,
		})
	})
	if err != nil {
		return model.RewardConfig{}, err
	}
	s.logger.Info("rewards pause toggled", zap.Bool("paused", paused), zap.String("reason", reason))
	return cfg, nil
}

func (s *Service) UpdateRewardsApy(ctx context.Context, authority model.Pubkey, apyNumerator uint64) (model.RewardConfig, error) {
	now := s.now()
	var cfg model.RewardConfig
	_, err := s.commit(ctx, model.OpUpdateRewardsApy, []string{ledger.RewardsKey()}, func(ctx context.Context, tx ledger.Tx) error {
		current, ok, err := tx.RewardConfig(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrRewardsNotInitialized
		}
		if cfg, err = rewards.UpdateApy(current, authority, apyNumerator); err != nil {
			return err
		}
		if err := tx.PutRewardConfig(ctx, cfg); err != nil {
			return err
		}
		return emit(tx, model.EventRewardsConfigUpdated, model.Pubkey{}, now, model.RewardsConfigUpdatedData{
			PreviousApyNumerator: current.ApyNumerator,
			NewApyNumerator:      cfg.ApyNumerator,
			NewRewardsPerSecond:  cfg.RewardsPerSecond,
			UpdatedAt:            now.Unix(),
			UpdatedBy:            authority,
		})
	})
	if err != nil {
		return model.RewardConfig{}, err
	}
	s.logger.Info("rewards apy updated", zap.Uint64("apy_numerator", cfg.ApyNumerator), zap.Uint64("rewards_per_second", cfg.RewardsPerSecond))
	return cfg, nil
}
