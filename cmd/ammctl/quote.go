package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"ammCore/internal/cache"
	"ammCore/internal/config"
	"ammCore/internal/model"
	"ammCore/internal/quote"
	"ammCore/internal/replay"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Preview a swap against the current pool reserves",
		RunE:  runQuote,
	}

	addCommonFlags(cmd)
	cmd.Flags().String("pool", "", "pool key (base58 or 0x hex)")
	cmd.Flags().String("amount", "", "input amount in display units")
	cmd.Flags().Bool("a-to-b", true, "sell token A for token B")
	cmd.Flags().Uint64("slippage-bps", 50, "slippage allowance in basis points")
	cmd.Flags().String("decimals", "", "mint decimals (comma-separated mint=decimals)")
	return cmd
}

type quoteOutput struct {
	quote.SwapQuote
	AmountInDisplay  string `json:"amount_in_display"`
	AmountOutDisplay string `json:"amount_out_display"`
	MinimumDisplay   string `json:"minimum_received_display"`
	PriceDisplay     string `json:"execution_price_display"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	address, err := replay.ParseKey(cfg.Pool)
	if err != nil {
		return err
	}
	metas, err := tokenMetas(cfg.Decimals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := openRuntime(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	pool, err := rt.svc.Pool(ctx, address)
	if err != nil {
		return err
	}
	sell, buy := pool.MintsFor(cfg.AToB)
	amountIn, err := quote.ToBaseUnits(cfg.Amount, metas.Decimals(sell))
	if err != nil {
		return err
	}

	q, err := rt.svc.QuoteSwap(ctx, address, cfg.AToB, amountIn, cfg.SlippageBps)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(quoteOutput{
		SwapQuote:        q,
		AmountInDisplay:  quote.FormatAmount(q.Breakdown.AmountIn, metas.Decimals(sell)),
		AmountOutDisplay: quote.FormatAmount(q.Breakdown.AmountOut, metas.Decimals(buy)),
		MinimumDisplay:   quote.FormatAmount(q.MinimumReceived, metas.Decimals(buy)),
		PriceDisplay:     quote.FormatPrice(q.ExecutionPrice),
	})
}

func tokenMetas(raw map[string]string) (*cache.TokenMetaCache, error) {
	decimals, err := config.ParseDecimals(raw)
	if err != nil {
		return nil, err
	}
	metas := cache.NewTokenMetaCache()
	for text, d := range decimals {
		mint, err := replay.ParseKey(text)
		if err != nil {
			return nil, err
		}
		metas.Set(model.TokenMeta{Mint: mint, Decimals: d})
	}
	return metas, nil
}
