package sim

import (
	"time"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
)

const OrderFilled = "filled"

// Order is immutable once placed. Every order fills immediately.
type Order struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"account_id"`
	Symbol         string            `json:"symbol"`
	AssetClass     market.AssetClass `json:"asset_type"`
	Type           broker.OrderType  `json:"order_type"`
	Side           broker.Side       `json:"side"`
	Quantity       float64           `json:"quantity"`
	Price          float64           `json:"execution_price"`
	StopLoss       *float64          `json:"stop_loss,omitempty"`
	TakeProfit     *float64          `json:"take_profit,omitempty"`
	RequiredMargin float64           `json:"required_margin"`
	ContractSize   float64           `json:"contract_size"`
	Leverage       int               `json:"leverage_used"`
	Status         string            `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}
