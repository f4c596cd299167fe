// Package replay feeds a recorded operation stream through the exchange
// service, writing every result and rejection as JSONL and checkpointing
// progress so an interrupted replay resumes where it stopped.
package replay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ammCore/internal/exchange"
	"ammCore/internal/model"
	"ammCore/internal/storage"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Summary counts what a run did.
type Summary struct {
	Applied  int    `json:"applied"`
	Rejected int    `json:"rejected"`
	Skipped  int    `json:"skipped"`
	LastSeq  uint64 `json:"last_seq"`
}

// Runner replays operations one at a time in seq order.
type Runner struct {
	cfg     RunConfig
	svc     *exchange.Service
	clock   *Clock
	results *storage.JsonlStorage
	rejects *storage.JsonlStorage
	state   StateStore
	logger  *zap.Logger
}

// NewRunner builds a Runner. clock must be the one the service was built
// with; state may be nil to disable checkpointing.
func NewRunner(cfg RunConfig, svc *exchange.Service, clock *Clock, results, rejects *storage.JsonlStorage, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		svc:     svc,
		clock:   clock,
		results: results,
		rejects: rejects,
		state:   state,
		logger:  logger,
	}
}

// Run applies ops. Rejections are recorded and skipped; an
// infrastructure failure that survives retries stops the run, leaving the
// checkpoint at the last completed batch.
func (r *Runner) Run(ctx context.Context, ops []model.Operation) (Summary, error) {
	if r.svc == nil {
		return Summary{}, fmt.Errorf("service is nil")
	}
	if r.clock == nil {
		return Summary{}, fmt.Errorf("clock is nil")
	}
	if r.results == nil || r.rejects == nil {
		return Summary{}, fmt.Errorf("result storage is nil")
	}

	var summary Summary
	if r.state != nil {
		last, ok, err := r.state.Load(ctx)
		if err != nil {
			return summary, err
		}
		if ok {
			summary.LastSeq = last
			r.logger.Info("resume from checkpoint", zap.Uint64("last_seq", last))
		}
	}

	batches, err := SplitBatches(len(ops), r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		var results, rejects []interface{}
		for _, op := range ops[batch.From:batch.To] {
			if op.Seq <= summary.LastSeq {
				summary.Skipped++
				continue
			}

			out, err := r.applyWithRetry(ctx, op)
			switch {
			case err == nil:
				summary.Applied++
				results = append(results, model.OpResult{Seq: op.Seq, Op: op.Op, Pool: op.Pool, User: op.User, Result: out})
			case rejected(err):
				summary.Rejected++
				rejects = append(rejects, model.OpErrorFrom(op, err))
				r.logger.Debug("operation rejected", zap.Uint64("seq", op.Seq), zap.String("op", op.Op), zap.Error(err))
			default:
				if flushErr := r.flush(results, rejects); flushErr != nil {
					r.logger.Error("flush before abort failed", zap.Error(flushErr))
				}
				return summary, fmt.Errorf("apply seq %d (%s): %w", op.Seq, op.Op, err)
			}
			summary.LastSeq = op.Seq
		}

		if err := r.flush(results, rejects); err != nil {
			return summary, err
		}
		if r.state != nil {
			if err := r.state.Save(ctx, summary.LastSeq); err != nil {
				return summary, err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("from", batch.From),
			zap.Int("to", batch.To),
			zap.Uint64("last_seq", summary.LastSeq),
			zap.Int("applied", summary.Applied),
			zap.Int("rejected", summary.Rejected),
		)
	}

	return summary, nil
}

func (r *Runner) applyWithRetry(ctx context.Context, op model.Operation) (interface{}, error) {
	r.clock.Pin(op.At)
	now := r.clock.Now()

	var out interface{}
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		out, err = apply(ctx, r.svc, now, op)
		if err != nil && !rejected(err) {
			r.logger.Warn("operation failed", zap.Uint64("seq", op.Seq), zap.String("op", op.Op), zap.Error(err))
		}
		return err
	})
	return out, err
}

func (r *Runner) flush(results, rejects []interface{}) error {
	if err := r.results.Append(results...); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	if err := r.rejects.Append(rejects...); err != nil {
		return fmt.Errorf("store rejections: %w", err)
	}
	return nil
}
