package journal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTradesByAccount(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, r := range sampleTrades("A", base) {
		require.NoError(t, m.RecordTrade(r))
	}
	for _, r := range sampleTrades("B", base) {
		require.NoError(t, m.RecordTrade(r))
	}

	got, err := m.Trades("A", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, EventOpen, got[0].Type)
	assert.Equal(t, EventClose, got[1].Type)
	assert.Equal(t, 50.0, *got[1].PnL)

	none, err := m.Trades("missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryTradesLimitKeepsMostRecent(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 15; i++ {
		require.NoError(t, m.RecordTrade(TradeRecord{
			ID:        fmt.Sprintf("T%02d", i),
			AccountID: "A",
			Time:      base.Add(time.Duration(i) * time.Second),
			Type:      EventOpen,
		}))
	}

	got, err := m.Trades("A", 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "T05", got[0].ID)
	assert.Equal(t, "T14", got[9].ID)
}

func TestMemoryTradesReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.RecordTrade(TradeRecord{ID: "T1", AccountID: "A"}))

	got, err := m.Trades("A", 0)
	require.NoError(t, err)
	got[0].ID = "mutated"

	again, err := m.Trades("A", 0)
	require.NoError(t, err)
	assert.Equal(t, "T1", again[0].ID)
}

func TestMemoryEquity(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.RecordEquity(EquitySnapshot{AccountID: "A", Balance: 1, Equity: 1}))
	require.NoError(t, m.RecordEquity(EquitySnapshot{AccountID: "A", Balance: 2, Equity: 2}))

	eq := m.Equity("A")
	require.Len(t, eq, 2)
	assert.Equal(t, 2.0, eq[1].Balance)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	j, err := Open(Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, j)

	_, err = Open(Options{Type: TypeSQLite})
	assert.Error(t, err)

	_, err = Open(Options{Type: TypeCSV, TradesFile: "x.csv"})
	assert.Error(t, err)

	_, err = Open(Options{Type: "postgres"})
	assert.Error(t, err)
}
