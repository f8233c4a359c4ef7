package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
)

func floatPtr(v float64) *float64 { return &v }

func testPosition(side broker.Side, sl, tp *float64) Position {
	return OpenPosition("pos-1", Order{
		ID:             "ord-1",
		AccountID:      "acct-1",
		Symbol:         "EUR/USD",
		AssetClass:     market.Forex,
		Side:           side,
		Quantity:       0.1,
		Price:          1.0850,
		StopLoss:       sl,
		TakeProfit:     tp,
		RequiredMargin: 108.50,
		ContractSize:   100000,
		Leverage:       100,
		CreatedAt:      time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	})
}

func TestOpenPosition(t *testing.T) {
	t.Parallel()

	p := testPosition(broker.Buy, nil, nil)
	assert.Equal(t, PositionOpen, p.Status)
	assert.Equal(t, p.EntryPrice, p.CurrentPrice)
	assert.Equal(t, 0.1, p.RemainingQuantity)
	assert.Zero(t, p.UnrealizedPnL)
	assert.Equal(t, "ord-1", p.OrderID)
}

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	p := testPosition(broker.Buy, nil, nil)
	pnl, pct := p.MarkToMarket(1.0900)
	assert.InDelta(t, 50, pnl, 1e-6)
	assert.InDelta(t, 50/108.50*100, pct, 1e-6)
	assert.Equal(t, 1.0900, p.CurrentPrice)
	assert.InDelta(t, 50, p.UnrealizedPnL, 1e-6)

	s := testPosition(broker.Sell, nil, nil)
	pnl, _ = s.MarkToMarket(1.0900)
	assert.InDelta(t, -50, pnl, 1e-6)
}

func TestCloseMatchesMarkToMarket(t *testing.T) {
	t.Parallel()

	for _, side := range []broker.Side{broker.Buy, broker.Sell} {
		for _, q := range []float64{0.1, 0.05, 0.025} {
			p := testPosition(side, nil, nil)
			marked := p
			unrealized, _ := marked.MarkToMarket(1.0920)

			realized, _, err := p.Close(1.0920, q, time.Now(), ReasonManual)
			require.NoError(t, err)
			assert.InDelta(t, unrealized*q/0.1, realized, 1e-6, "side=%s qty=%g", side, q)
		}
	}
}

func TestPartialCloseDecrementsRemaining(t *testing.T) {
	t.Parallel()

	p := testPosition(broker.Buy, nil, nil)

	realized, released, err := p.Close(1.0900, 0.04, time.Now(), ReasonManual)
	require.NoError(t, err)
	assert.InDelta(t, 20, realized, 1e-6)
	assert.InDelta(t, 43.40, released, 1e-6)
	assert.InDelta(t, 0.06, p.RemainingQuantity, 1e-12)
	assert.InDelta(t, 65.10, p.MarginUsed, 1e-6)
	assert.True(t, p.IsOpen())
	assert.InDelta(t, 30, p.UnrealizedPnL, 1e-6)

	// The second close is priced on what is left, not the original size.
	realized, released, err = p.Close(1.0900, 0.06, time.Now(), ReasonManual)
	require.NoError(t, err)
	assert.InDelta(t, 30, realized, 1e-6)
	assert.InDelta(t, 65.10, released, 1e-6)
	assert.Equal(t, PositionClosed, p.Status)
	assert.Zero(t, p.RemainingQuantity)
	assert.Zero(t, p.MarginUsed)
	assert.InDelta(t, 50, p.RealizedPnL, 1e-6)
	require.NotNil(t, p.ClosePrice)
	assert.Equal(t, 1.0900, *p.ClosePrice)
	require.NotNil(t, p.ClosedAt)
	assert.Equal(t, ReasonManual, p.CloseReason)
}

func TestCloseRejectsBadQuantity(t *testing.T) {
	t.Parallel()

	for _, q := range []float64{0, -1, 0.2} {
		p := testPosition(broker.Buy, nil, nil)
		before := p
		_, _, err := p.Close(1.09, q, time.Now(), ReasonManual)
		require.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, before, p)
	}
}

func TestCloseClosedPosition(t *testing.T) {
	t.Parallel()

	p := testPosition(broker.Buy, nil, nil)
	_, _, err := p.Close(1.09, 0.1, time.Now(), ReasonManual)
	require.NoError(t, err)

	_, _, err = p.Close(1.09, 0.1, time.Now(), ReasonManual)
	require.ErrorIs(t, err, ErrPositionNotOpen)
}

func TestTriggers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		side   broker.Side
		sl, tp *float64
		price  float64
		wantSL bool
		wantTP bool
	}{
		{name: "no_levels", side: broker.Buy, price: 1.0, wantSL: false, wantTP: false},
		{name: "long_sl_hit", side: broker.Buy, sl: floatPtr(1.0800), price: 1.0800, wantSL: true},
		{name: "long_sl_not_hit", side: broker.Buy, sl: floatPtr(1.0800), price: 1.0801},
		{name: "long_tp_hit", side: broker.Buy, tp: floatPtr(1.0900), price: 1.0905, wantTP: true},
		{name: "long_tp_not_hit", side: broker.Buy, tp: floatPtr(1.0900), price: 1.0899},
		{name: "short_sl_hit", side: broker.Sell, sl: floatPtr(1.0900), price: 1.0901, wantSL: true},
		{name: "short_sl_not_hit", side: broker.Sell, sl: floatPtr(1.0900), price: 1.0899},
		{name: "short_tp_hit", side: broker.Sell, tp: floatPtr(1.0800), price: 1.0800, wantTP: true},
		{name: "short_tp_not_hit", side: broker.Sell, tp: floatPtr(1.0800), price: 1.0801},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := testPosition(tt.side, tt.sl, tt.tp)
			assert.Equal(t, tt.wantSL, p.StopLossHit(tt.price))
			assert.Equal(t, tt.wantTP, p.TakeProfitHit(tt.price))
		})
	}
}
