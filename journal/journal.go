// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
)

type EventType string

const (
	EventOpen  EventType = "open"
	EventClose EventType = "close"
)

// TradeRecord is one append-only history entry: a position opening or a
// (possibly partial) close. PnL is set only on close events.
type TradeRecord struct {
	ID         string            `json:"id"`
	AccountID  string            `json:"account_id"`
	OrderID    string            `json:"order_id"`
	PositionID string            `json:"position_id"`
	Symbol     string            `json:"symbol"`
	AssetClass market.AssetClass `json:"asset_type"`
	Side       broker.Side       `json:"side"`
	Quantity   float64           `json:"quantity"`
	Price      float64           `json:"price"`
	PnL        *float64          `json:"pnl,omitempty"`
	Time       time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Reason     string            `json:"reason,omitempty"`
}

// EquitySnapshot captures an account's ledger after a mutation.
type EquitySnapshot struct {
	AccountID  string    `json:"account_id"`
	Time       time.Time `json:"timestamp"`
	Balance    float64   `json:"balance"`
	Equity     float64   `json:"equity"`
	MarginUsed float64   `json:"margin_used"`
	FreeMargin float64   `json:"free_margin"`
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	// Trades returns the most recent limit records for an account in
	// chronological order. limit <= 0 returns everything.
	Trades(accountID string, limit int) ([]TradeRecord, error)
	Close() error
}

// tail returns the last n elements of recs, or all of them when n <= 0.
func tail(recs []TradeRecord, n int) []TradeRecord {
	if n > 0 && len(recs) > n {
		recs = recs[len(recs)-n:]
	}
	out := make([]TradeRecord, len(recs))
	copy(out, recs)
	return out
}
