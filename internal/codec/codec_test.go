package codec

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"ammCore/internal/model"
)

func samplePool() model.Pool {
	return model.Pool{
		Address:        model.Pubkey{0xaa},
		Authority:      model.Pubkey{1},
		TokenAMint:     model.Pubkey{2},
		TokenBMint:     model.Pubkey{3},
		TokenAVault:    model.Pubkey{4},
		TokenBVault:    model.Pubkey{5},
		LpMint:         model.Pubkey{6},
		ReserveA:       10000,
		ReserveB:       50000,
		TotalLpSupply:  22360,
		FeeNumerator:   3,
		FeeDenominator: 1000,
		Bump:           254,
	}
}

func TestPoolLayoutOffsets(t *testing.T) {
	pool := samplePool()
	data, err := EncodePool(pool)
	require.NoError(t, err)
	require.Len(t, data, PoolSize)

	require.Equal(t, PoolDiscriminator[:], data[0:8])
	require.Equal(t, pool.Authority[:], data[8:40])
	require.Equal(t, pool.TokenAMint[:], data[40:72])
	require.Equal(t, pool.TokenBMint[:], data[72:104])
	require.Equal(t, pool.TokenAVault[:], data[104:136])
	require.Equal(t, pool.TokenBVault[:], data[136:168])
	require.Equal(t, pool.LpMint[:], data[168:200])
	require.Equal(t, uint64(10000), binary.LittleEndian.Uint64(data[200:208]))
	require.Equal(t, uint64(50000), binary.LittleEndian.Uint64(data[208:216]))
	require.Equal(t, uint64(22360), binary.LittleEndian.Uint64(data[216:224]))
	require.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[224:232]))
	require.Equal(t, uint64(1000), binary.LittleEndian.Uint64(data[232:240]))
	require.Equal(t, byte(254), data[240])
	require.Equal(t, make([]byte, 8), data[241:249])

	decoded, err := DecodePool(pool.Address, data)
	require.NoError(t, err)
	require.Equal(t, pool, decoded)
}

func TestDecodeRejectsWrongKindAndLength(t *testing.T) {
	data, err := EncodePool(samplePool())
	require.NoError(t, err)

	_, err = DecodePool(model.Pubkey{}, data[:PoolSize-1])
	require.Error(t, err)

	_, err = DecodePosition(data[:PositionSize])
	require.Error(t, err)
}

func TestPositionOrderRewardRoundTrip(t *testing.T) {
	pos := model.Position{
		Owner:              model.Pubkey{7},
		Pool:               model.Pubkey{8},
		LpTokens:           500,
		DepositTimestamp:   1700000000,
		LastClaimTimestamp: 1700000100,
		TotalRewardClaimed: 12,
		PendingRewards:     3,
		Bump:               1,
	}
	data, err := EncodePosition(pos)
	require.NoError(t, err)
	require.Len(t, data, PositionSize)
	gotPos, err := DecodePosition(data)
	require.NoError(t, err)
	require.Equal(t, pos, gotPos)

	id := uuid.NewString()
	order := model.LimitOrder{
		ID:             id,
		Address:        model.DeriveOrder(model.Pubkey{8}, model.Pubkey{7}, id),
		Owner:          model.Pubkey{7},
		Pool:           model.Pubkey{8},
		SellToken:      model.Pubkey{2},
		BuyToken:       model.Pubkey{3},
		SellAmount:     10,
		TargetPrice:    4_500_000,
		MinimumReceive: 40,
		CreatedAt:      1700000000,
		ExpiresAt:      1700086400,
		Status:         model.OrderExpired,
		Bump:           2,
	}
	data, err = EncodeOrder(order)
	require.NoError(t, err)
	require.Len(t, data, OrderSize)
	gotOrder, err := DecodeOrder(data)
	require.NoError(t, err)
	require.Equal(t, order, gotOrder)

	_, err = EncodeOrder(model.LimitOrder{ID: "not-a-uuid"})
	require.Error(t, err)

	cfg := model.RewardConfig{
		Mint:             model.Pubkey{9},
		Authority:        model.Pubkey{1},
		TotalSupply:      1_000_000_000_000,
		MintedSoFar:      77,
		RewardsPerSecond: 15_854_895,
		ApyNumerator:     50,
		ApyDenominator:   100,
		StartTimestamp:   1700000000,
		IsPaused:         true,
	}
	data, err = EncodeRewardConfig(cfg)
	require.NoError(t, err)
	require.Len(t, data, RewardSize)
	gotCfg, err := DecodeRewardConfig(data)
	require.NoError(t, err)
	require.Equal(t, cfg, gotCfg)
}
