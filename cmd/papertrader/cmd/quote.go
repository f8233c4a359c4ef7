package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/market"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [SYMBOL...]",
	Short: "Print simulated quotes",
	Long: `Quote symbols from the simulated price feed. With no symbols, every
registered instrument is quoted; --asset-type narrows that to one class.

Examples:
  papertrader quote EUR/USD BTC/USD
  papertrader quote --asset-type index`,
	RunE: runQuote,
}

var quoteAssetType string

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().StringVar(&quoteAssetType, "asset-type", "", "quote every symbol of one asset type")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := market.DefaultRegistry()
	symbols := make([]string, 0, len(args))
	for _, a := range args {
		symbols = append(symbols, strings.ToUpper(a))
	}
	if len(symbols) == 0 {
		if quoteAssetType != "" {
			ac, err := market.ParseAssetClass(quoteAssetType)
			if err != nil {
				return err
			}
			symbols = reg.Symbols(ac)
		} else {
			symbols = reg.AllSymbols()
		}
	}

	feed := market.NewSimFeed(reg, cfg.Feed.Variation)
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.QuoteTimeout())
	defer cancel()

	quotes := make([]market.Quote, 0, len(symbols))
	for _, s := range symbols {
		q, err := feed.Quote(ctx, s)
		if err != nil {
			return fmt.Errorf("quote %s: %w", s, err)
		}
		quotes = append(quotes, q)
	}
	return writeQuotes(cmd.OutOrStdout(), quotes)
}
