package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ammCore/internal/codec"
	"ammCore/internal/model"
)

// RedisPoolCache stores pools in their borsh account layout, so any
// reader of the on-ledger format can consume the snapshots.
type RedisPoolCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

func NewRedisPoolCache(ctx context.Context, cfg RedisConfig) (*RedisPoolCache, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "amm:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisPoolCache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

func (c *RedisPoolCache) key(address model.Pubkey) string {
	return c.prefix + "pool:" + address.String()
}

func (c *RedisPoolCache) GetPool(ctx context.Context, address model.Pubkey) (model.Pool, bool, error) {
	data, err := c.client.Get(ctx, c.key(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Pool{}, false, nil
	}
	if err != nil {
		return model.Pool{}, false, err
	}
	pool, err := codec.DecodePool(address, data)
	if err != nil {
		return model.Pool{}, false, fmt.Errorf("cached pool %s: %w", address, err)
	}
	return pool, true, nil
}

func (c *RedisPoolCache) PutPool(ctx context.Context, pool model.Pool) error {
	data, err := codec.EncodePool(pool)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(pool.Address), data, c.ttl).Err()
}

func (c *RedisPoolCache) Invalidate(ctx context.Context, address model.Pubkey) error {
	return c.client.Del(ctx, c.key(address)).Err()
}

func (c *RedisPoolCache) Close() error {
	return c.client.Close()
}
