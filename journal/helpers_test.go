package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	return j, path
}

func ptr(v float64) *float64 { return &v }

// sampleTrades returns an open and a close record for one position.
func sampleTrades(accountID string, base time.Time) []TradeRecord {
	return []TradeRecord{
		{
			ID:         accountID + "-1",
			AccountID:  accountID,
			OrderID:    "O1",
			PositionID: "P1",
			Symbol:     "EUR/USD",
			AssetClass: market.Forex,
			Side:       broker.Buy,
			Quantity:   0.1,
			Price:      1.0850,
			Time:       base,
			Type:       EventOpen,
		},
		{
			ID:         accountID + "-2",
			AccountID:  accountID,
			OrderID:    "O1",
			PositionID: "P1",
			Symbol:     "EUR/USD",
			AssetClass: market.Forex,
			Side:       broker.Buy,
			Quantity:   0.1,
			Price:      1.0900,
			PnL:        ptr(50),
			Time:       base.Add(time.Minute),
			Type:       EventClose,
			Reason:     "manual",
		},
	}
}
