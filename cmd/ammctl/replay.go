package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammCore/internal/config"
	"ammCore/internal/exchange"
	"ammCore/internal/replay"
	"ammCore/internal/storage"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply a JSONL operation stream to the ledger",
		RunE:  runReplay,
	}

	addCommonFlags(cmd)
	cmd.Flags().String("in", "", "input operations JSONL")
	cmd.Flags().String("results", "./data/results.jsonl", "applied operations JSONL")
	cmd.Flags().String("rejects", "./data/rejects.jsonl", "rejected operations JSONL")
	cmd.Flags().String("checkpoint", "./data/replay_checkpoint.json", "checkpoint file path")
	cmd.Flags().String("state-backend", "file", "checkpoint backend (file, db, none)")
	cmd.Flags().String("stream", "default", "stream name for db checkpoints")
	cmd.Flags().Int("batch-size", 500, "operations per checkpoint")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts for infrastructure errors")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	return cmd
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	ops, err := replay.ReadOperations(inputFile)
	if err != nil {
		return fmt.Errorf("read operations: %w", err)
	}

	clock := &replay.Clock{}
	rt, err := openRuntime(ctx, cfg.Config, logger, exchange.WithClock(clock.Now))
	if err != nil {
		return err
	}
	defer rt.Close()

	var state replay.StateStore
	switch cfg.StateBackend {
	case "file":
		state = replay.NewFileStateStore(cfg.Checkpoint)
	case "db":
		state = replay.NewDBStateStore(rt.pg, cfg.StreamName)
	}

	runner := replay.NewRunner(replay.RunConfig{
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, rt.svc, clock, storage.NewJsonlStorage(cfg.Results), storage.NewJsonlStorage(cfg.Rejects), state, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.Int("operations", len(ops)),
		zap.String("results", cfg.Results),
		zap.String("rejects", cfg.Rejects),
		zap.String("state_backend", cfg.StateBackend),
		zap.Int("batch_size", cfg.BatchSize),
	)

	start := time.Now()
	summary, err := runner.Run(ctx, ops)
	logger.Info("replay done",
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("skipped", summary.Skipped),
		zap.Uint64("last_seq", summary.LastSeq),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}
