package broker

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/papertrader/market"
)

// Broker is the order-routing surface shared by the simulated engine and
// anything that fronts it.
type Broker interface {
	Quote(ctx context.Context, symbol string) (market.Quote, error)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderResult, error)
	ClosePosition(ctx context.Context, req ClosePositionRequest) (CloseResult, error)
}

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("invalid side %q", s)
}

// Sign is +1 for buys and -1 for sells.
func (s Side) Sign() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
	Stop   OrderType = "stop"
)

func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToLower(strings.TrimSpace(s))) {
	case Market:
		return Market, nil
	case Limit:
		return Limit, nil
	case Stop:
		return Stop, nil
	}
	return "", fmt.Errorf("invalid order type %q", s)
}

// CreateAccountRequest opens a paper account. Nil fields take the
// engine defaults.
type CreateAccountRequest struct {
	UserID              int64    `json:"user_id"`
	InitialBalance      *float64 `json:"initial_balance,omitempty"`
	Currency            string   `json:"account_currency,omitempty"`
	Leverage            *int     `json:"leverage,omitempty"`
	AllowedAssetClasses []string `json:"allowed_asset_types,omitempty"`
}

type PlaceOrderRequest struct {
	AccountID  string    `json:"account_id"`
	Symbol     string    `json:"symbol"`
	OrderType  OrderType `json:"order_type"`
	Side       Side      `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      *float64  `json:"price,omitempty"`
	StopLoss   *float64  `json:"stop_loss,omitempty"`
	TakeProfit *float64  `json:"take_profit,omitempty"`
}

type OrderResult struct {
	OrderID        string            `json:"order_id"`
	PositionID     string            `json:"position_id"`
	ExecutionPrice float64           `json:"execution_price"`
	RequiredMargin float64           `json:"required_margin"`
	AssetClass     market.AssetClass `json:"asset_type"`
	LeverageUsed   int               `json:"leverage_used"`
}

// ClosePositionRequest closes all of a position, or Quantity of it when set.
type ClosePositionRequest struct {
	PositionID string   `json:"position_id"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Reason     string   `json:"-"`
}

type CloseResult struct {
	PositionID        string            `json:"position_id"`
	ClosePrice        float64           `json:"close_price"`
	RealizedPnL       float64           `json:"realized_pnl"`
	AssetClass        market.AssetClass `json:"asset_type"`
	RemainingQuantity float64           `json:"remaining_quantity"`
	Closed            bool              `json:"closed"`
}
