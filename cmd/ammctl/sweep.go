package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammCore/internal/config"
	"ammCore/internal/exchange"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale limit orders and execute the ones whose price is met",
		RunE:  runSweep,
	}

	addCommonFlags(cmd)
	cmd.Flags().String("at", "", "sweep time (unix seconds or RFC3339), default now")
	cmd.Flags().Int("workers", 4, "pools swept in parallel")
	cmd.Flags().Duration("interval", 0, "repeat every interval until interrupted, 0 sweeps once")
	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSweep(cfgFile, cmd.Flags())
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

	rt, err := openRuntime(ctx, cfg.Config, logger, exchange.WithSweepWorkers(cfg.Workers))
	if err != nil {
		return err
	}
	defer rt.Close()

	sweepOnce := func() error {
		now := time.Now()
		if cfg.At != 0 {
			now = time.Unix(cfg.At, 0)
		}
		report, err := rt.svc.Sweep(ctx, now)
		if err != nil {
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
	}

	if cfg.Interval <= 0 {
		return sweepOnce()
	}

	logger.Info("sweep loop start", zap.Duration("interval", cfg.Interval), zap.Int("workers", cfg.Workers))
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		if err := sweepOnce(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
