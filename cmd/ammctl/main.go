package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"ammCore/internal/cache"
	"ammCore/internal/config"
	"ammCore/internal/exchange"
	"ammCore/internal/ledger"
	"ammCore/internal/metrics"
	"ammCore/internal/storage"
	"ammCore/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "ammctl",
		Short:        "Constant-product AMM exchange core",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.AddCommand(newReplayCmd(), newSweepCmd(), newQuoteCmd(), newInspectCmd(), newFundCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addCommonFlags registers the flags every command shares.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "memory", "ledger store (memory, postgres)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().Bool("migrate", true, "create ledger tables on start")
	cmd.Flags().String("cache", "memory", "pool snapshot cache (memory, redis, none)")
	cmd.Flags().String("redis-addr", "", "Redis address")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Duration("cache-ttl", 0, "snapshot TTL, 0 keeps snapshots until overwritten")
	cmd.Flags().Uint64("fee-numerator", 3, "default pool fee numerator")
	cmd.Flags().Uint64("fee-denominator", 1000, "default pool fee denominator")
	cmd.Flags().String("events-out", "", "optional events JSONL path")
	cmd.Flags().String("metrics-out", "", "optional Prometheus textfile path")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-file", "", "optional rotating log file")
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil || file == "" {
		return logger, err
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(rotator), cfg.Level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

// redactDSN hides the password of a URL-style DSN. Keyword DSNs are
// replaced entirely since they cannot be parsed reliably.
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "[redacted]"
	}
	return u.Redacted()
}

// runtime wires the store, cache, sink and metrics behind one service.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	store   ledger.Store
	pg      *postgres.Store
	redis   *cache.RedisPoolCache
	metrics *metrics.Metrics
	svc     *exchange.Service
}

func openRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...exchange.Option) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger, metrics: metrics.New()}

	switch cfg.Store {
	case "postgres":
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		rt.pg, rt.store = pg, pg
	default:
		logger.Warn("using the in-memory ledger, state is lost on exit")
		rt.store = ledger.NewMemoryStore()
	}

	opts = append([]exchange.Option{
		exchange.WithMetrics(rt.metrics),
		exchange.WithDefaultFee(cfg.FeeNumerator, cfg.FeeDenominator),
	}, opts...)

	switch cfg.Cache {
	case "redis":
		rc, err := cache.NewRedisPoolCache(ctx, cache.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			rt.store.Close()
			return nil, err
		}
		rt.redis = rc
		opts = append(opts, exchange.WithCache(rc))
	case "none":
		opts = append(opts, exchange.WithCache(nil))
	}

	if cfg.EventsOut != "" {
		opts = append(opts, exchange.WithSink(storage.NewJsonlStorage(cfg.EventsOut)))
	}

	rt.svc = exchange.New(rt.store, logger, opts...)

	logger.Info("runtime ready",
		zap.String("store", cfg.Store),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("cache", cfg.Cache),
		zap.String("events_out", cfg.EventsOut),
	)
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.cfg.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(rt.cfg.MetricsOut, rt.metrics.Registry); err != nil {
			rt.logger.Warn("write metrics failed", zap.String("path", rt.cfg.MetricsOut), zap.Error(err))
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.logger.Warn("close redis failed", zap.Error(err))
		}
	}
	rt.store.Close()
}
