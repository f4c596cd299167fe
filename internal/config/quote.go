package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// QuoteConfig holds configuration for the quote command. Amount is a
// display amount scaled by the sell mint's decimals.
type QuoteConfig struct {
	Config
	Pool        string
	Amount      string
	AToB        bool
	SlippageBps uint64
	Decimals    map[string]string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"a-to-b":       true,
		"slippage-bps": uint64(50),
	})
	if err != nil {
		return QuoteConfig{}, err
	}
	base, err := common(v)
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Config:      base,
		Pool:        v.GetString("pool"),
		Amount:      v.GetString("amount"),
		AToB:        v.GetBool("a-to-b"),
		SlippageBps: v.GetUint64("slippage-bps"),
		Decimals:    getStringMap(v, "decimals"),
	}
	if cfg.Pool == "" {
		return QuoteConfig{}, fmt.Errorf("pool is required")
	}
	if cfg.Amount == "" {
		return QuoteConfig{}, fmt.Errorf("amount is required")
	}
	if cfg.SlippageBps > 10_000 {
		return QuoteConfig{}, fmt.Errorf("slippage-bps must be at most 10000")
	}
	return cfg, nil
}

// ParseDecimals converts a mint=decimals map into numeric form.
func ParseDecimals(in map[string]string) (map[string]uint8, error) {
	out := make(map[string]uint8, len(in))
	for mint, text := range in {
		d, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("decimals for %s: %w", mint, err)
		}
		out[mint] = uint8(d)
	}
	return out, nil
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
