// market/instruments.go
package market

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// Instrument is the static metadata the engine needs to price, margin and
// value a symbol.
type Instrument struct {
	Symbol       string     `json:"symbol" yaml:"symbol"`
	AssetClass   AssetClass `json:"asset_type" yaml:"asset_type"`
	BasePrice    float64    `json:"base_price" yaml:"base_price"`
	Spread       float64    `json:"spread" yaml:"spread"`
	ContractSize float64    `json:"contract_size" yaml:"contract_size"`
}

// Registry maps symbols to instrument metadata. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	bySymbol map[string]Instrument
	byClass  map[AssetClass][]string
}

func NewRegistry(instruments []Instrument) (*Registry, error) {
	r := &Registry{
		bySymbol: make(map[string]Instrument, len(instruments)),
		byClass:  make(map[AssetClass][]string),
	}
	for _, in := range instruments {
		if in.Symbol == "" {
			return nil, errors.New("instrument symbol is required")
		}
		if !in.AssetClass.Valid() {
			return nil, fmt.Errorf("instrument %s: unknown asset class %q", in.Symbol, in.AssetClass)
		}
		if in.BasePrice <= 0 {
			return nil, fmt.Errorf("instrument %s: base price must be positive", in.Symbol)
		}
		if _, dup := r.bySymbol[in.Symbol]; dup {
			return nil, fmt.Errorf("instrument %s: duplicate symbol", in.Symbol)
		}
		if in.ContractSize <= 0 {
			in.ContractSize = 1
		}
		r.bySymbol[in.Symbol] = in
		r.byClass[in.AssetClass] = append(r.byClass[in.AssetClass], in.Symbol)
	}
	for c := range r.byClass {
		sort.Strings(r.byClass[c])
	}
	return r, nil
}

func (r *Registry) Lookup(symbol string) (Instrument, error) {
	in, ok := r.bySymbol[symbol]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return in, nil
}

func (r *Registry) Classify(symbol string) (AssetClass, error) {
	in, err := r.Lookup(symbol)
	if err != nil {
		return "", err
	}
	return in.AssetClass, nil
}

func (r *Registry) ContractSize(symbol string) (float64, error) {
	in, err := r.Lookup(symbol)
	if err != nil {
		return 0, err
	}
	return in.ContractSize, nil
}

// Symbols returns the sorted symbols of one asset class.
func (r *Registry) Symbols(c AssetClass) []string {
	out := make([]string, len(r.byClass[c]))
	copy(out, r.byClass[c])
	return out
}

// AllSymbols returns every symbol grouped by asset class in display order.
func (r *Registry) AllSymbols() []string {
	var out []string
	for _, c := range AllAssetClasses {
		out = append(out, r.byClass[c]...)
	}
	return out
}

// ContractSizes returns the per-symbol contract sizes of one class.
func (r *Registry) ContractSizes(c AssetClass) map[string]float64 {
	out := make(map[string]float64, len(r.byClass[c]))
	for _, s := range r.byClass[c] {
		out[s] = r.bySymbol[s].ContractSize
	}
	return out
}

// Spread percentages for classes quoted as a fraction of price.
const (
	stockSpreadPct  = 0.0002
	cryptoSpreadPct = 0.001
	indexSpreadPct  = 0.0001

	forexContractSize = 100000
)

// DefaultInstruments is the built-in simulated market.
func DefaultInstruments() []Instrument {
	var out []Instrument

	forex := []struct {
		sym           string
		price, spread float64
	}{
		{"EUR/USD", 1.0850, 0.0002},
		{"GBP/USD", 1.2750, 0.0003},
		{"USD/JPY", 147.50, 0.02},
		{"USD/CHF", 0.9150, 0.0002},
		{"AUD/USD", 0.6650, 0.0002},
		{"USD/CAD", 1.3450, 0.0003},
		{"NZD/USD", 0.6150, 0.0003},
	}
	for _, f := range forex {
		out = append(out, Instrument{Symbol: f.sym, AssetClass: Forex, BasePrice: f.price, Spread: f.spread, ContractSize: forexContractSize})
	}

	stocks := map[string]float64{
		"AAPL": 175.50, "MSFT": 335.20, "GOOGL": 142.80, "AMZN": 155.30,
		"TSLA": 248.90, "NVDA": 875.20, "META": 325.60, "NFLX": 485.70,
	}
	for sym, p := range stocks {
		out = append(out, Instrument{Symbol: sym, AssetClass: Stock, BasePrice: p, Spread: p * stockSpreadPct, ContractSize: 1})
	}

	crypto := map[string]float64{
		"BTC/USD": 45120.50, "ETH/USD": 2450.80, "BNB/USD": 315.20, "ADA/USD": 0.52,
		"SOL/USD": 98.75, "DOT/USD": 7.85, "DOGE/USD": 0.085, "AVAX/USD": 38.90,
	}
	for sym, p := range crypto {
		out = append(out, Instrument{Symbol: sym, AssetClass: Crypto, BasePrice: p, Spread: p * cryptoSpreadPct, ContractSize: 1})
	}

	commodities := []struct {
		sym                 string
		price, spread, size float64
	}{
		{"XAU/USD", 2050.80, 0.50, 100},
		{"XAG/USD", 23.45, 0.05, 5000},
		{"WTI/USD", 78.90, 0.10, 1000},
		{"BRENT/USD", 82.15, 0.12, 1000},
		{"COFFEE/USD", 185.20, 0.80, 37500},
	}
	for _, c := range commodities {
		out = append(out, Instrument{Symbol: c.sym, AssetClass: Commodity, BasePrice: c.price, Spread: c.spread, ContractSize: c.size})
	}

	indices := []struct {
		sym         string
		price, size float64
	}{
		{"SPX", 4512.50, 100},
		{"NDX", 15875.30, 100},
		{"DJI", 35245.80, 100},
		{"FTSE", 7654.20, 10},
		{"DAX", 16543.70, 25},
	}
	for _, i := range indices {
		out = append(out, Instrument{Symbol: i.sym, AssetClass: Index, BasePrice: i.price, Spread: i.price * indexSpreadPct, ContractSize: i.size})
	}

	return out
}

// DefaultRegistry returns a registry over DefaultInstruments.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultInstruments())
	if err != nil {
		// The built-in table is static; failure here is a programming error.
		panic(err)
	}
	return r
}
