package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// SweepConfig holds configuration for the sweep command.
type SweepConfig struct {
	Config
	// At is the sweep time in unix seconds; zero means now.
	At       int64
	Workers  int
	Interval time.Duration
	Pools    []string
}

// LoadSweep merges config file, environment variables, and flags into SweepConfig.
func LoadSweep(cfgFile string, flags *pflag.FlagSet) (SweepConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"workers":  4,
		"interval": time.Duration(0),
	})
	if err != nil {
		return SweepConfig{}, err
	}
	base, err := common(v)
	if err != nil {
		return SweepConfig{}, err
	}

	at, err := ParseTimestamp(v.GetString("at"))
	if err != nil {
		return SweepConfig{}, fmt.Errorf("parse at: %w", err)
	}
	cfg := SweepConfig{
		Config:   base,
		At:       int64(at),
		Workers:  v.GetInt("workers"),
		Interval: v.GetDuration("interval"),
		Pools:    getStringSlice(v, "pool"),
	}
	if cfg.Workers <= 0 {
		return SweepConfig{}, fmt.Errorf("workers must be greater than zero")
	}
	if cfg.At != 0 && cfg.Interval > 0 {
		return SweepConfig{}, fmt.Errorf("at and interval are mutually exclusive")
	}
	return cfg, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
