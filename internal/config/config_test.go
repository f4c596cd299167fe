package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Store)
	require.Equal(t, "memory", cfg.Cache)
	require.Equal(t, uint64(3), cfg.FeeNumerator)
	require.Equal(t, uint64(1000), cfg.FeeDenominator)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: warn\nfee-numerator: 5\ncache-ttl: 30s\n"), 0o644))
	t.Setenv("AMM_FEE_NUMERATOR", "7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, uint64(7), cfg.FeeNumerator)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadValidatesBackends(t *testing.T) {
	t.Setenv("AMM_STORE", "postgres")
	_, err := Load("", nil)
	require.ErrorContains(t, err, "pg-dsn")

	t.Setenv("AMM_STORE", "sqlite")
	_, err = Load("", nil)
	require.ErrorContains(t, err, "unknown store")

	t.Setenv("AMM_STORE", "memory")
	t.Setenv("AMM_CACHE", "redis")
	_, err = Load("", nil)
	require.ErrorContains(t, err, "redis-addr")
}

func TestLoadReplay(t *testing.T) {
	_, err := LoadReplay("", nil)
	require.ErrorContains(t, err, "input path")

	t.Setenv("AMM_IN", "ops.jsonl")
	cfg, err := LoadReplay("", nil)
	require.NoError(t, err)
	require.Equal(t, "ops.jsonl", cfg.In)
	require.Equal(t, "file", cfg.StateBackend)
	require.Equal(t, 500, cfg.BatchSize)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)

	t.Setenv("AMM_STATE_BACKEND", "db")
	_, err = LoadReplay("", nil)
	require.ErrorContains(t, err, "postgres")
}

func TestLoadSweep(t *testing.T) {
	t.Setenv("AMM_AT", "2023-11-14T22:13:20Z")
	t.Setenv("AMM_POOL", "a, b,,c")
	cfg, err := LoadSweep("", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), cfg.At)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, []string{"a", "b", "c"}, cfg.Pools)

	t.Setenv("AMM_INTERVAL", "1m")
	_, err = LoadSweep("", nil)
	require.ErrorContains(t, err, "mutually exclusive")
}

func TestLoadQuote(t *testing.T) {
	t.Setenv("AMM_POOL", "pool")
	t.Setenv("AMM_AMOUNT", "1.5")
	t.Setenv("AMM_DECIMALS", "mintA=9, mintB=6")
	cfg, err := LoadQuote("", nil)
	require.NoError(t, err)
	require.True(t, cfg.AToB)
	require.Equal(t, uint64(50), cfg.SlippageBps)

	decimals, err := ParseDecimals(cfg.Decimals)
	require.NoError(t, err)
	require.Equal(t, map[string]uint8{"mintA": 9, "mintB": 6}, decimals)

	t.Setenv("AMM_SLIPPAGE_BPS", "20000")
	_, err = LoadQuote("", nil)
	require.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]uint64{
		"":                     0,
		"1700000000":           1700000000,
		"2023-11-14T22:13:20Z": 1700000000,
	}
	for input, want := range cases {
		got, err := ParseTimestamp(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}
	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
}
