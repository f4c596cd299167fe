// Package codec maps ledger records to their fixed-width borsh layouts.
package codec

import (
	"bytes"
	"fmt"

	"github.com/near/borsh-go"

	"ammCore/internal/model"
)

// Discriminator tags the record kind in the first 8 bytes.
type Discriminator [8]byte

var (
	PoolDiscriminator     = Discriminator{66, 38, 17, 64, 188, 80, 68, 129}
	PositionDiscriminator = Discriminator{220, 156, 226, 70, 90, 4, 201, 39}
	OrderDiscriminator    = Discriminator{137, 183, 212, 91, 115, 29, 141, 227}
	RewardDiscriminator   = Discriminator{84, 79, 197, 243, 74, 243, 89, 223}
)

// Record sizes. Each layout is padded to its allocated size.
const (
	PoolSize     = 249
	PositionSize = 121
	OrderSize    = 202
	RewardSize   = 122
)

// poolLayout: tag, six keys, five u64, bump, pad.
type poolLayout struct {
	Tag            Discriminator
	Authority      model.Pubkey
	TokenAMint     model.Pubkey
	TokenBMint     model.Pubkey
	TokenAVault    model.Pubkey
	TokenBVault    model.Pubkey
	LpMint         model.Pubkey
	ReserveA       uint64
	ReserveB       uint64
	TotalLpSupply  uint64
	FeeNumerator   uint64
	FeeDenominator uint64
	Bump           uint8
	Reserved       [8]byte
}

type positionLayout struct {
	Tag                Discriminator
	Owner              model.Pubkey
	Pool               model.Pubkey
	LpTokens           uint64
	DepositTimestamp   int64
	LastClaimTimestamp int64
	TotalRewardClaimed uint64
	PendingRewards     uint64
	Bump               uint8
	Reserved           [8]byte
}

// orderLayout stores the uuid as its 16 raw bytes.
type orderLayout struct {
	Tag            Discriminator
	ID             [16]byte
	Owner          model.Pubkey
	Pool           model.Pubkey
	SellToken      model.Pubkey
	BuyToken       model.Pubkey
	SellAmount     uint64
	TargetPrice    uint64
	MinimumReceive uint64
	CreatedAt      int64
	ExpiresAt      int64
	Status         model.OrderStatus
	ReceivedAmount uint64
	Bump           uint8
}

type rewardLayout struct {
	Tag              Discriminator
	Mint             model.Pubkey
	Authority        model.Pubkey
	TotalSupply      uint64
	MintedSoFar      uint64
	RewardsPerSecond uint64
	ApyNumerator     uint64
	ApyDenominator   uint64
	StartTimestamp   int64
	IsPaused         bool
	Bump             uint8
}

func encode(value interface{}, size int) ([]byte, error) {
	data, err := borsh.Serialize(value)
	if err != nil {
		return nil, err
	}
	if len(data) > size {
		return nil, fmt.Errorf("layout overflows %d bytes: %d", size, len(data))
	}
	if len(data) < size {
		data = append(data, make([]byte, size-len(data))...)
	}
	return data, nil
}

func decode(data []byte, size int, tag Discriminator, out interface{}) error {
	if len(data) != size {
		return fmt.Errorf("record length %d, want %d", len(data), size)
	}
	if !bytes.Equal(data[:len(tag)], tag[:]) {
		return fmt.Errorf("unexpected discriminator %v", data[:len(tag)])
	}
	return borsh.Deserialize(out, data)
}

// EncodePool writes the 249-byte pool record. The address is not part of
// the layout; it is the record's key.
func EncodePool(p model.Pool) ([]byte, error) {
	data, err := encode(poolLayout{
		Tag:            PoolDiscriminator,
		Authority:      p.Authority,
		TokenAMint:     p.TokenAMint,
		TokenBMint:     p.TokenBMint,
		TokenAVault:    p.TokenAVault,
		TokenBVault:    p.TokenBVault,
		LpMint:         p.LpMint,
		ReserveA:       p.ReserveA,
		ReserveB:       p.ReserveB,
		TotalLpSupply:  p.TotalLpSupply,
		FeeNumerator:   p.FeeNumerator,
		FeeDenominator: p.FeeDenominator,
		Bump:           p.Bump,
	}, PoolSize)
	if err != nil {
		return nil, fmt.Errorf("encode pool: %w", err)
	}
	return data, nil
}

// DecodePool reads a pool record stored under address.
func DecodePool(address model.Pubkey, data []byte) (model.Pool, error) {
	var l poolLayout
	if err := decode(data, PoolSize, PoolDiscriminator, &l); err != nil {
		return model.Pool{}, fmt.Errorf("decode pool: %w", err)
	}
	return model.Pool{
		Address:        address,
		Authority:      l.Authority,
		TokenAMint:     l.TokenAMint,
		TokenBMint:     l.TokenBMint,
		TokenAVault:    l.TokenAVault,
		TokenBVault:    l.TokenBVault,
		LpMint:         l.LpMint,
		ReserveA:       l.ReserveA,
		ReserveB:       l.ReserveB,
		TotalLpSupply:  l.TotalLpSupply,
		FeeNumerator:   l.FeeNumerator,
		FeeDenominator: l.FeeDenominator,
		Bump:           l.Bump,
	}, nil
}

func EncodePosition(p model.Position) ([]byte, error) {
	data, err := encode(positionLayout{
		Tag:                PositionDiscriminator,
		Owner:              p.Owner,
		Pool:               p.Pool,
		LpTokens:           p.LpTokens,
		DepositTimestamp:   p.DepositTimestamp,
		LastClaimTimestamp: p.LastClaimTimestamp,
		TotalRewardClaimed: p.TotalRewardClaimed,
		PendingRewards:     p.PendingRewards,
		Bump:               p.Bump,
	}, PositionSize)
	if err != nil {
		return nil, fmt.Errorf("encode position: %w", err)
	}
	return data, nil
}

func DecodePosition(data []byte) (model.Position, error) {
	var l positionLayout
	if err := decode(data, PositionSize, PositionDiscriminator, &l); err != nil {
		return model.Position{}, fmt.Errorf("decode position: %w", err)
	}
	return model.Position{
		Owner:              l.Owner,
		Pool:               l.Pool,
		LpTokens:           l.LpTokens,
		DepositTimestamp:   l.DepositTimestamp,
		LastClaimTimestamp: l.LastClaimTimestamp,
		TotalRewardClaimed: l.TotalRewardClaimed,
		PendingRewards:     l.PendingRewards,
		Bump:               l.Bump,
	}, nil
}

func EncodeOrder(o model.LimitOrder) ([]byte, error) {
	id, err := orderIDBytes(o.ID)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	data, err := encode(orderLayout{
		Tag:            OrderDiscriminator,
		ID:             id,
		Owner:          o.Owner,
		Pool:           o.Pool,
		SellToken:      o.SellToken,
		BuyToken:       o.BuyToken,
		SellAmount:     o.SellAmount,
		TargetPrice:    o.TargetPrice,
		MinimumReceive: o.MinimumReceive,
		CreatedAt:      o.CreatedAt,
		ExpiresAt:      o.ExpiresAt,
		Status:         o.Status,
		ReceivedAmount: o.ReceivedAmount,
		Bump:           o.Bump,
	}, OrderSize)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	return data, nil
}

func DecodeOrder(data []byte) (model.LimitOrder, error) {
	var l orderLayout
	if err := decode(data, OrderSize, OrderDiscriminator, &l); err != nil {
		return model.LimitOrder{}, fmt.Errorf("decode order: %w", err)
	}
	if l.Status > model.OrderExpired {
		return model.LimitOrder{}, fmt.Errorf("decode order: unknown status %d", uint8(l.Status))
	}
	id := orderIDString(l.ID)
	return model.LimitOrder{
		ID:             id,
		Address:        model.DeriveOrder(l.Pool, l.Owner, id),
		Owner:          l.Owner,
		Pool:           l.Pool,
		SellToken:      l.SellToken,
		BuyToken:       l.BuyToken,
		SellAmount:     l.SellAmount,
		TargetPrice:    l.TargetPrice,
		MinimumReceive: l.MinimumReceive,
		CreatedAt:      l.CreatedAt,
		ExpiresAt:      l.ExpiresAt,
		Status:         l.Status,
		ReceivedAmount: l.ReceivedAmount,
		Bump:           l.Bump,
	}, nil
}

func EncodeRewardConfig(c model.RewardConfig) ([]byte, error) {
	data, err := encode(rewardLayout{
		Tag:              RewardDiscriminator,
		Mint:             c.Mint,
		Authority:        c.Authority,
		TotalSupply:      c.TotalSupply,
		MintedSoFar:      c.MintedSoFar,
		RewardsPerSecond: c.RewardsPerSecond,
		ApyNumerator:     c.ApyNumerator,
		ApyDenominator:   c.ApyDenominator,
		StartTimestamp:   c.StartTimestamp,
		IsPaused:         c.IsPaused,
		Bump:             c.Bump,
	}, RewardSize)
	if err != nil {
		return nil, fmt.Errorf("encode reward config: %w", err)
	}
	return data, nil
}

func DecodeRewardConfig(data []byte) (model.RewardConfig, error) {
	var l rewardLayout
	if err := decode(data, RewardSize, RewardDiscriminator, &l); err != nil {
		return model.RewardConfig{}, fmt.Errorf("decode reward config: %w", err)
	}
	return model.RewardConfig{
		Mint:             l.Mint,
		Authority:        l.Authority,
		TotalSupply:      l.TotalSupply,
		MintedSoFar:      l.MintedSoFar,
		RewardsPerSecond: l.RewardsPerSecond,
		ApyNumerator:     l.ApyNumerator,
		ApyDenominator:   l.ApyDenominator,
		StartTimestamp:   l.StartTimestamp,
		IsPaused:         l.IsPaused,
		Bump:             l.Bump,
	}, nil
}
