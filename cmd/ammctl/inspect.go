package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"ammCore/internal/codec"
	"ammCore/internal/config"
	"ammCore/internal/model"
	"ammCore/internal/quote"
	"ammCore/internal/replay"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dump a pool's fixed-width record layout and decoded fields",
		RunE:  runInspect,
	}

	addCommonFlags(cmd)
	cmd.Flags().String("pool", "", "pool key (base58 or 0x hex)")
	cmd.Flags().String("owner", "", "optional position owner to dump as well")
	return cmd
}

type recordDump struct {
	Kind   string      `json:"kind"`
	Key    string      `json:"key"`
	Size   int         `json:"size"`
	Layout string      `json:"layout"`
	Fields interface{} `json:"fields"`
}

type inspectOutput struct {
	Pool      recordDump  `json:"pool"`
	SpotPrice string      `json:"spot_price,omitempty"`
	Position  *recordDump `json:"position,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolText, _ := cmd.Flags().GetString("pool")
	if poolText == "" {
		return fmt.Errorf("pool is required")
	}
	address, err := replay.ParseKey(poolText)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	pool, err := rt.svc.Pool(ctx, address)
	if err != nil {
		return err
	}
	raw, err := codec.EncodePool(pool)
	if err != nil {
		return err
	}
	decoded, err := codec.DecodePool(address, raw)
	if err != nil {
		return err
	}

	out := inspectOutput{Pool: recordDump{
		Kind:   "pool",
		Key:    address.String(),
		Size:   len(raw),
		Layout: hexutil.Encode(raw),
		Fields: decoded,
	}}
	if price, err := quote.PoolPrice(pool.ReserveA, pool.ReserveB); err == nil {
		out.SpotPrice = quote.FormatPrice(price)
	}

	if ownerText, _ := cmd.Flags().GetString("owner"); ownerText != "" {
		owner, err := replay.ParseKey(ownerText)
		if err != nil {
			return err
		}
		dump, err := positionDump(ctx, rt, address, owner)
		if err != nil {
			return err
		}
		out.Position = &dump
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func positionDump(ctx context.Context, rt *runtime, pool, owner model.Pubkey) (recordDump, error) {
	pos, err := rt.svc.Position(ctx, pool, owner)
	if err != nil {
		return recordDump{}, err
	}
	raw, err := codec.EncodePosition(pos)
	if err != nil {
		return recordDump{}, err
	}
	decoded, err := codec.DecodePosition(raw)
	if err != nil {
		return recordDump{}, err
	}
	return recordDump{
		Kind:   "position",
		Key:    pos.Address().String(),
		Size:   len(raw),
		Layout: hexutil.Encode(raw),
		Fields: decoded,
	}, nil
}
