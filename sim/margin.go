package sim

import "github.com/rustyeddy/papertrader/market"

// Notional is the full exposure of qty at price. Forex, commodities and
// indices are scaled by the contract size; stocks and crypto are not.
func Notional(class market.AssetClass, price, qty, contractSize float64) float64 {
	n := price * qty
	if class.UsesContractSize() {
		n *= contractSize
	}
	return n
}

// RequiredMargin is notional / leverage. Leverage below 1 is treated as 1.
func RequiredMargin(class market.AssetClass, price, qty, contractSize float64, leverage int) float64 {
	if leverage < 1 {
		leverage = 1
	}
	return Notional(class, price, qty, contractSize) / float64(leverage)
}

// effectiveLeverage caps the asset class default at the account leverage.
func effectiveLeverage(class market.AssetClass, accountLeverage int) int {
	l := market.DefaultLeverage(class)
	if accountLeverage > 0 && accountLeverage < l {
		l = accountLeverage
	}
	return l
}
