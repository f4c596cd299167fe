package exchange

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ammCore/internal/ledger"
	"ammCore/internal/model"
)

// SweepReport counts what one sweep did.
type SweepReport struct {
	Pools    int `json:"pools"`
	Executed int `json:"executed"`
	Expired  int `json:"expired"`
	Skipped  int `json:"skipped"`
}

// Sweep visits every pending order once: stale orders are expired and
// refunded, the rest are offered to TryExecute. Pools are swept in
// parallel, orders within a pool in creation order. Business rejections
// count as skipped; the first infrastructure error aborts the sweep.
func (s *Service) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	start := time.Now()
	pools, err := s.Pools(ctx)
	if err != nil {
		return SweepReport{}, err
	}

	var executed, expired, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.sweepWorkers)
	for _, pool := range pools {
		pool := pool
		g.Go(func() error {
			var pending []model.LimitOrder
			err := s.store.View(gctx, func(ctx context.Context, tx ledger.Tx) error {
				var err error
				pending, err = tx.PendingOrders(ctx, pool.Address)
				return err
			})
			if err != nil {
				return err
			}

			for _, order := range pending {
				if err := gctx.Err(); err != nil {
					return err
				}
				if order.ExpiredAt(now) {
					_, err = s.expire(gctx, order.ID, now)
				} else {
					_, err = s.tryExecute(gctx, order.ID, now)
				}
				switch {
				case err == nil && order.ExpiredAt(now):
					expired.Add(1)
				case err == nil:
					executed.Add(1)
				case model.IsDomain(err):
					skipped.Add(1)
				default:
					return err
				}
			}
			return nil
		})
	}
	err = g.Wait()

	report := SweepReport{
		Pools:    len(pools),
		Executed: int(executed.Load()),
		Expired:  int(expired.Load()),
		Skipped:  int(skipped.Load()),
	}
	if s.metrics != nil {
		s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("sweep failed", zap.Error(err))
	}
	s.logger.Info("sweep finished",
		zap.Int("pools", report.Pools),
		zap.Int("executed", report.Executed),
		zap.Int("expired", report.Expired),
		zap.Int("skipped", report.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, err
}
