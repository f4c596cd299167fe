package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Config
	In           string
	Results      string
	Rejects      string
	Checkpoint   string
	StateBackend string
	StreamName   string
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"results":       "./data/results.jsonl",
		"rejects":       "./data/rejects.jsonl",
		"checkpoint":    "./data/replay_checkpoint.json",
		"state-backend": "file",
		"stream":        "default",
		"batch-size":    500,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
	})
	if err != nil {
		return ReplayConfig{}, err
	}
	base, err := common(v)
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		Config:       base,
		In:           v.GetString("in"),
		Results:      v.GetString("results"),
		Rejects:      v.GetString("rejects"),
		Checkpoint:   v.GetString("checkpoint"),
		StateBackend: strings.ToLower(v.GetString("state-backend")),
		StreamName:   v.GetString("stream"),
		BatchSize:    v.GetInt("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}

	if cfg.In == "" {
		return ReplayConfig{}, fmt.Errorf("input path is required")
	}
	switch cfg.StateBackend {
	case "file", "none":
	case "db":
		if cfg.Store != "postgres" {
			return ReplayConfig{}, fmt.Errorf("state-backend db needs the postgres store")
		}
	default:
		return ReplayConfig{}, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
	if cfg.BatchSize <= 0 {
		return ReplayConfig{}, fmt.Errorf("batch size must be greater than zero")
	}
	return cfg, nil
}
