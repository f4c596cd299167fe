package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings every command shares: where the ledger lives,
// the snapshot cache, logging and metrics output.
type Config struct {
	Store          string
	PGDSN          string
	Migrate        bool
	Cache          string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	FeeNumerator   uint64
	FeeDenominator uint64
	EventsOut      string
	MetricsOut     string
	LogLevel       string
	LogFile        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return Config{}, err
	}
	return common(v)
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("store", "memory")
	v.SetDefault("migrate", true)
	v.SetDefault("cache", "memory")
	v.SetDefault("redis-db", 0)
	v.SetDefault("cache-ttl", time.Duration(0))
	v.SetDefault("fee-numerator", uint64(3))
	v.SetDefault("fee-denominator", uint64(1000))
	v.SetDefault("log-level", "info")
}

// newViper builds a viper instance with the shared defaults, the
// command's own defaults, bound flags and an optional config file.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setCommonDefaults(v)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func common(v *viper.Viper) (Config, error) {
	cfg := Config{
		Store:          strings.ToLower(v.GetString("store")),
		PGDSN:          v.GetString("pg-dsn"),
		Migrate:        v.GetBool("migrate"),
		Cache:          strings.ToLower(v.GetString("cache")),
		RedisAddr:      v.GetString("redis-addr"),
		RedisPassword:  v.GetString("redis-password"),
		RedisDB:        v.GetInt("redis-db"),
		CacheTTL:       v.GetDuration("cache-ttl"),
		FeeNumerator:   v.GetUint64("fee-numerator"),
		FeeDenominator: v.GetUint64("fee-denominator"),
		EventsOut:      v.GetString("events-out"),
		MetricsOut:     v.GetString("metrics-out"),
		LogLevel:       v.GetString("log-level"),
		LogFile:        v.GetString("log-file"),
	}

	switch cfg.Store {
	case "memory":
	case "postgres":
		if cfg.PGDSN == "" {
			return Config{}, fmt.Errorf("pg-dsn is required for the postgres store")
		}
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
	switch cfg.Cache {
	case "memory", "none":
	case "redis":
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("redis-addr is required for the redis cache")
		}
	default:
		return Config{}, fmt.Errorf("unknown cache %q", cfg.Cache)
	}
	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
