package market

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultVariation bounds the random move applied to a base price (±0.1%).
const DefaultVariation = 0.001

// SimFeed produces quotes around each instrument's base price with a small
// uniform random perturbation. Repeated quotes for a symbol differ unless
// the variation is zero.
type SimFeed struct {
	reg       *Registry
	variation float64

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewSimFeed(reg *Registry, variation float64) *SimFeed {
	return &SimFeed{
		reg:       reg,
		variation: variation,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// SetSource replaces the random source, e.g. with a seeded one.
func (f *SimFeed) SetSource(src rand.Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rnd = rand.New(src)
}

// SetClock replaces the quote timestamp source.
func (f *SimFeed) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *SimFeed) Quote(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	in, err := f.reg.Lookup(symbol)
	if err != nil {
		return Quote{}, err
	}

	f.mu.Lock()
	u := 0.0
	if f.variation > 0 {
		u = (f.rnd.Float64()*2 - 1) * f.variation
	}
	ts := f.now().UTC()
	f.mu.Unlock()

	px := in.BasePrice * (1 + u)
	return Quote{
		Symbol:     symbol,
		AssetClass: in.AssetClass,
		Bid:        px - in.Spread/2,
		Ask:        px + in.Spread/2,
		Spread:     in.Spread,
		Time:       ts,
	}, nil
}
