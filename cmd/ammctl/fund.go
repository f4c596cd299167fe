package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ammCore/internal/config"
	"ammCore/internal/replay"
)

func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit an owner's balance of a mint",
		RunE:  runFund,
	}

	addCommonFlags(cmd)
	cmd.Flags().String("owner", "", "owner key (base58 or 0x hex)")
	cmd.Flags().String("mint", "", "mint key (base58 or 0x hex)")
	cmd.Flags().Uint64("amount", 0, "amount in base units")
	return cmd
}

func runFund(cmd *cobra.Command, _ []string) error {
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

	ownerText, _ := cmd.Flags().GetString("owner")
	mintText, _ := cmd.Flags().GetString("mint")
	amount, _ := cmd.Flags().GetUint64("amount")

	keys, err := replay.ParseKeys([]string{ownerText, mintText})
	if err != nil {
		return err
	}
	if len(keys) != 2 {
		return fmt.Errorf("owner and mint are required")
	}

	ctx := context.Background()
	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	acct, err := rt.svc.Deposit(ctx, keys[0], keys[1], amount)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(acct)
}
