package market

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FixedFeed serves quotes that only change when Set is called. It is the
// deterministic feed used by tests and replays.
type FixedFeed struct {
	reg *Registry

	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewFixedFeed(reg *Registry) *FixedFeed {
	return &FixedFeed{reg: reg, quotes: make(map[string]Quote)}
}

// Set stores a bid/ask pair for a registered symbol.
func (f *FixedFeed) Set(symbol string, bid, ask float64) error {
	class, err := f.reg.Classify(symbol)
	if err != nil {
		return err
	}
	if ask < bid {
		return fmt.Errorf("set quote %s: ask %.6f below bid %.6f", symbol, ask, bid)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = Quote{
		Symbol:     symbol,
		AssetClass: class,
		Bid:        bid,
		Ask:        ask,
		Spread:     ask - bid,
		Time:       time.Now().UTC(),
	}
	return nil
}

// SetMid stores a zero-spread quote.
func (f *FixedFeed) SetMid(symbol string, price float64) error {
	return f.Set(symbol, price, price)
}

func (f *FixedFeed) Quote(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	q, ok := f.quotes[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return q, nil
}
