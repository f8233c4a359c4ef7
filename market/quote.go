package market

import (
	"context"
	"time"
)

// Quote is a two-sided price for one symbol.
type Quote struct {
	Symbol     string     `json:"symbol"`
	AssetClass AssetClass `json:"asset_type"`
	Bid        float64    `json:"bid"`
	Ask        float64    `json:"ask"`
	Spread     float64    `json:"spread"`
	Time       time.Time  `json:"timestamp"`
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// PriceFeed supplies quotes. Implementations must return an error wrapping
// ErrUnknownSymbol for symbols they cannot price.
type PriceFeed interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// Snapshot quotes every symbol, skipping those the feed cannot price.
func Snapshot(ctx context.Context, feed PriceFeed, symbols []string) (map[string]Quote, error) {
	out := make(map[string]Quote, len(symbols))
	for _, s := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, err := feed.Quote(ctx, s)
		if err != nil {
			continue
		}
		out[s] = q
	}
	return out, nil
}
