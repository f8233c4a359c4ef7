package market

import (
	"fmt"
	"strings"
)

// AssetClass groups instruments that share margin and P/L rules.
type AssetClass string

const (
	Forex     AssetClass = "forex"
	Stock     AssetClass = "stock"
	Crypto    AssetClass = "crypto"
	Commodity AssetClass = "commodity"
	Index     AssetClass = "index"
)

// AllAssetClasses lists every supported class in display order.
var AllAssetClasses = []AssetClass{Forex, Stock, Crypto, Commodity, Index}

var defaultLeverage = map[AssetClass]int{
	Forex:     100,
	Stock:     5,
	Crypto:    10,
	Commodity: 20,
	Index:     10,
}

// fallbackLeverage applies to classes missing from the leverage table.
const fallbackLeverage = 10

func ParseAssetClass(s string) (AssetClass, error) {
	c := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown asset class %q", s)
	}
	return c, nil
}

func (c AssetClass) Valid() bool {
	_, ok := defaultLeverage[c]
	return ok
}

// UsesContractSize reports whether notional and P/L are scaled by the
// instrument's contract size. Stocks and crypto trade in whole units.
func (c AssetClass) UsesContractSize() bool {
	switch c {
	case Forex, Commodity, Index:
		return true
	default:
		return false
	}
}

func DefaultLeverage(c AssetClass) int {
	if l, ok := defaultLeverage[c]; ok {
		return l
	}
	return fallbackLeverage
}
