package sim

import (
	"time"

	"github.com/rustyeddy/papertrader/market"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountClosed AccountStatus = "closed"
)

type TradingStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
	LargestWin    float64 `json:"largest_win"`
	LargestLoss   float64 `json:"largest_loss"`
}

type Account struct {
	ID                  string              `json:"id"`
	UserID              int64               `json:"user_id"`
	Currency            string              `json:"currency"`
	Leverage            int                 `json:"leverage"`
	InitialBalance      float64             `json:"initial_balance"`
	Balance             float64             `json:"balance"`
	Equity              float64             `json:"equity"`
	MarginUsed          float64             `json:"margin_used"`
	FreeMargin          float64             `json:"free_margin"`
	TotalPnL            float64             `json:"total_pnl"`
	Status              AccountStatus       `json:"status"`
	AllowedAssetClasses []market.AssetClass `json:"allowed_asset_types"`
	Stats               TradingStats        `json:"trading_stats"`
	CreatedAt           time.Time           `json:"created_at"`
	ClosedAt            *time.Time          `json:"closed_at,omitempty"`
}

func (a *Account) Active() bool { return a.Status == AccountActive }

func (a *Account) Allows(c market.AssetClass) bool {
	for _, ac := range a.AllowedAssetClasses {
		if ac == c {
			return true
		}
	}
	return false
}

// ReserveMargin moves amount from free to used margin. Nothing changes
// when amount exceeds the free margin.
func (a *Account) ReserveMargin(amount float64) error {
	if amount > a.FreeMargin {
		return newError(KindInsufficientMargin,
			"insufficient margin: required %.2f, available %.2f", amount, a.FreeMargin)
	}
	a.MarginUsed += amount
	a.FreeMargin = a.Equity - a.MarginUsed
	return nil
}

func (a *Account) ReleaseMargin(amount float64) {
	a.MarginUsed -= amount
	if a.MarginUsed < qtyEpsilon {
		a.MarginUsed = 0
	}
	a.FreeMargin = a.Equity - a.MarginUsed
}

// ApplyRealizedPnL books pnl into the balance. openUnrealized is the
// unrealized P&L still carried by the account's open positions.
func (a *Account) ApplyRealizedPnL(pnl, openUnrealized float64) {
	a.Balance += pnl
	a.TotalPnL += pnl
	a.Revalue(openUnrealized)
}

func (a *Account) Revalue(openUnrealized float64) {
	a.Equity = a.Balance + openUnrealized
	a.FreeMargin = a.Equity - a.MarginUsed
}

// RecordTradeOutcome folds one realized result into the statistics.
// Anything that is not a profit counts as a loss.
func (a *Account) RecordTradeOutcome(pnl float64) {
	s := &a.Stats
	s.TotalTrades++
	if pnl > 0 {
		s.WinningTrades++
		n := float64(s.WinningTrades)
		s.AvgWin = (s.AvgWin*(n-1) + pnl) / n
		if pnl > s.LargestWin {
			s.LargestWin = pnl
		}
	} else {
		loss := -pnl
		s.LosingTrades++
		n := float64(s.LosingTrades)
		s.AvgLoss = (s.AvgLoss*(n-1) + loss) / n
		if loss > s.LargestLoss {
			s.LargestLoss = loss
		}
	}
	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
}

func (a Account) clone() Account {
	a.AllowedAssetClasses = append([]market.AssetClass(nil), a.AllowedAssetClasses...)
	if a.ClosedAt != nil {
		t := *a.ClosedAt
		a.ClosedAt = &t
	}
	return a
}
