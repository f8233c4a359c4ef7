package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
)

func TestMoneyAndPrice(t *testing.T) {
	assert.Equal(t, "10050.00", money(10050.000000000002))
	assert.Equal(t, "-12.35", money(-12.345))
	assert.Equal(t, "1.08500", price(market.Forex, 1.085))
	assert.Equal(t, "175.50", price(market.Stock, 175.5))
	assert.Equal(t, "0.08500", price(market.Crypto, 0.085))
}

func TestDayBounds(t *testing.T) {
	start, end, err := dayBounds(time.UTC, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = dayBounds(time.UTC, "15/01/2024")
	assert.Error(t, err)
}

func TestWriteTrades(t *testing.T) {
	pnl := 50.0
	recs := []journal.TradeRecord{
		{Type: journal.EventOpen, Symbol: "EUR/USD", AssetClass: market.Forex, Side: "buy", Quantity: 0.1, Price: 1.085, Time: time.Now()},
		{Type: journal.EventClose, Symbol: "EUR/USD", AssetClass: market.Forex, Side: "buy", Quantity: 0.1, Price: 1.09, PnL: &pnl, Reason: "manual", Time: time.Now()},
	}
	var buf bytes.Buffer
	require.NoError(t, writeTrades(&buf, recs))

	out := buf.String()
	assert.Contains(t, out, "1.09000")
	assert.Contains(t, out, "50.00")
	assert.True(t, strings.HasSuffix(out, "2 records, realized P&L 50.00\n"))
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papertrader.yaml")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"config", "init", "-o", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Created default configuration")

	_, err := config.LoadFromFile(path)
	require.NoError(t, err)

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "validate", "-f", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "10000.00 USD")
}

func TestQuoteCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"quote", "--asset-type", "index"})
	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	for _, s := range []string{"SPX", "NDX", "DJI", "FTSE", "DAX"} {
		assert.Contains(t, out, s)
	}
}

func TestWriteQuotesShowsMid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeQuotes(&buf, []market.Quote{
		{Symbol: "EUR/USD", AssetClass: market.Forex, Bid: 1.0849, Ask: 1.0851, Spread: 0.0002},
	}))

	out := buf.String()
	assert.Contains(t, out, "MID")
	assert.Contains(t, out, "1.08500")
	assert.Contains(t, out, "0.00020")
}
