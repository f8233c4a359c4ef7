package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryClassify(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	tests := []struct {
		symbol string
		class  AssetClass
		size   float64
	}{
		{"EUR/USD", Forex, 100000},
		{"USD/JPY", Forex, 100000},
		{"AAPL", Stock, 1},
		{"BTC/USD", Crypto, 1},
		{"XAU/USD", Commodity, 100},
		{"COFFEE/USD", Commodity, 37500},
		{"SPX", Index, 100},
		{"DAX", Index, 25},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.symbol, func(t *testing.T) {
			t.Parallel()
			c, err := reg.Classify(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.class, c)

			size, err := reg.ContractSize(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestRegistryUnknownSymbol(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	_, err := reg.Classify("NOPE")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))

	_, err = reg.ContractSize("NOPE")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}

func TestDefaultLeverage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, DefaultLeverage(Forex))
	assert.Equal(t, 5, DefaultLeverage(Stock))
	assert.Equal(t, 10, DefaultLeverage(Crypto))
	assert.Equal(t, 20, DefaultLeverage(Commodity))
	assert.Equal(t, 10, DefaultLeverage(Index))
	assert.Equal(t, 10, DefaultLeverage(AssetClass("bonds")))
}

func TestParseAssetClass(t *testing.T) {
	t.Parallel()

	c, err := ParseAssetClass(" Forex ")
	require.NoError(t, err)
	assert.Equal(t, Forex, c)

	_, err = ParseAssetClass("bonds")
	assert.Error(t, err)
}

func TestRegistrySymbolsSorted(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	syms := reg.Symbols(Index)
	assert.Equal(t, []string{"DAX", "DJI", "FTSE", "NDX", "SPX"}, syms)
	assert.Len(t, reg.AllSymbols(), 33)
}

func TestNewRegistryRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]Instrument{{Symbol: "X", AssetClass: "bonds", BasePrice: 1}})
	assert.Error(t, err)

	_, err = NewRegistry([]Instrument{
		{Symbol: "X", AssetClass: Stock, BasePrice: 1},
		{Symbol: "X", AssetClass: Stock, BasePrice: 2},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]Instrument{{Symbol: "X", AssetClass: Stock}})
	assert.Error(t, err)
}
