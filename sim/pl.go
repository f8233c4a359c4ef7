package sim

import (
	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
)

// Multiplier is the contract size for classes that use one, else 1.
func Multiplier(class market.AssetClass, contractSize float64) float64 {
	if class.UsesContractSize() {
		return contractSize
	}
	return 1
}

// UnrealizedPL values qty opened at entry against current.
func UnrealizedPL(side broker.Side, entry, current, qty, multiplier float64) float64 {
	return (current - entry) * side.Sign() * qty * multiplier
}

// PnLPercent expresses pnl as a percentage of the margin backing it.
func PnLPercent(pnl, margin float64) float64 {
	if margin <= 0 {
		return 0
	}
	return pnl / margin * 100
}
