package sim

import (
	"time"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
)

type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// qtyEpsilon absorbs float error when a sequence of partial closes should
// exhaust a position.
const qtyEpsilon = 1e-9

type Position struct {
	ID                string            `json:"id"`
	AccountID         string            `json:"account_id"`
	OrderID           string            `json:"order_id"`
	Symbol            string            `json:"symbol"`
	AssetClass        market.AssetClass `json:"asset_type"`
	Side              broker.Side       `json:"side"`
	Quantity          float64           `json:"quantity"`
	RemainingQuantity float64           `json:"remaining_quantity"`
	EntryPrice        float64           `json:"entry_price"`
	CurrentPrice      float64           `json:"current_price"`
	StopLoss          *float64          `json:"stop_loss,omitempty"`
	TakeProfit        *float64          `json:"take_profit,omitempty"`
	MarginUsed        float64           `json:"margin_used"`
	UnrealizedPnL     float64           `json:"unrealized_pnl"`
	PnLPercentage     float64           `json:"pnl_percentage"`
	RealizedPnL       float64           `json:"realized_pnl"`
	ContractSize      float64           `json:"contract_size"`
	Leverage          int               `json:"leverage_used"`
	Status            PositionStatus    `json:"status"`
	OpenedAt          time.Time         `json:"opened_at"`
	ClosePrice        *float64          `json:"close_price,omitempty"`
	ClosedAt          *time.Time        `json:"closed_at,omitempty"`
	CloseReason       string            `json:"close_reason,omitempty"`
}

// OpenPosition creates the position filled by o.
func OpenPosition(id string, o Order) Position {
	return Position{
		ID:                id,
		AccountID:         o.AccountID,
		OrderID:           o.ID,
		Symbol:            o.Symbol,
		AssetClass:        o.AssetClass,
		Side:              o.Side,
		Quantity:          o.Quantity,
		RemainingQuantity: o.Quantity,
		EntryPrice:        o.Price,
		CurrentPrice:      o.Price,
		StopLoss:          o.StopLoss,
		TakeProfit:        o.TakeProfit,
		MarginUsed:        o.RequiredMargin,
		ContractSize:      o.ContractSize,
		Leverage:          o.Leverage,
		Status:            PositionOpen,
		OpenedAt:          o.CreatedAt,
	}
}

func (p *Position) IsOpen() bool { return p.Status == PositionOpen }

// pnlAt values the remaining quantity at price without mutating p.
func (p *Position) pnlAt(price float64) float64 {
	return UnrealizedPL(p.Side, p.EntryPrice, price, p.RemainingQuantity, Multiplier(p.AssetClass, p.ContractSize))
}

// MarkToMarket revalues the remaining quantity at price.
func (p *Position) MarkToMarket(price float64) (pnl, pct float64) {
	pnl = p.pnlAt(price)
	pct = PnLPercent(pnl, p.MarginUsed)
	p.CurrentPrice = price
	p.UnrealizedPnL = pnl
	p.PnLPercentage = pct
	return pnl, pct
}

// Close realizes qty of the remaining quantity at price. It returns the
// realized P&L and the margin released for the closed part.
func (p *Position) Close(price, qty float64, at time.Time, reason string) (realized, released float64, err error) {
	if !p.IsOpen() {
		return 0, 0, newError(KindPositionNotOpen, "position %s is not open", p.ID)
	}
	if qty <= 0 || qty > p.RemainingQuantity+qtyEpsilon {
		return 0, 0, newError(KindInvalidQuantity, "close quantity %g must be in (0, %g]", qty, p.RemainingQuantity)
	}
	if qty > p.RemainingQuantity {
		qty = p.RemainingQuantity
	}

	frac := qty / p.RemainingQuantity
	realized = p.pnlAt(price) * frac
	released = p.MarginUsed * frac

	p.RemainingQuantity -= qty
	p.MarginUsed -= released
	p.RealizedPnL += realized
	p.CurrentPrice = price

	if p.RemainingQuantity <= qtyEpsilon {
		released += p.MarginUsed
		p.RemainingQuantity = 0
		p.MarginUsed = 0
		p.UnrealizedPnL = 0
		p.PnLPercentage = 0
		p.Status = PositionClosed
		cp := price
		p.ClosePrice = &cp
		t := at
		p.ClosedAt = &t
		p.CloseReason = reason
		return realized, released, nil
	}

	p.MarkToMarket(price)
	return realized, released, nil
}

// StopLossHit reports whether price breaches the stop. Longs stop out at
// or below it, shorts at or above.
func (p *Position) StopLossHit(price float64) bool {
	if p.StopLoss == nil {
		return false
	}
	if p.Side == broker.Sell {
		return price >= *p.StopLoss
	}
	return price <= *p.StopLoss
}

func (p *Position) TakeProfitHit(price float64) bool {
	if p.TakeProfit == nil {
		return false
	}
	if p.Side == broker.Sell {
		return price <= *p.TakeProfit
	}
	return price >= *p.TakeProfit
}

// markPrice is the side of the book a position would close against.
func markPrice(side broker.Side, q market.Quote) float64 {
	if side == broker.Sell {
		return q.Ask
	}
	return q.Bid
}
