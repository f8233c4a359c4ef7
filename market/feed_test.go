package market

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimFeedBounds(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	feed := NewSimFeed(reg, DefaultVariation)
	feed.SetSource(rand.NewSource(42))

	in, err := reg.Lookup("EUR/USD")
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		q, err := feed.Quote(context.Background(), "EUR/USD")
		require.NoError(t, err)

		mid := q.Mid()
		assert.InDelta(t, in.BasePrice, mid, in.BasePrice*DefaultVariation+1e-12)
		assert.InDelta(t, in.Spread, q.Ask-q.Bid, 1e-12)
		assert.Equal(t, Forex, q.AssetClass)
	}
}

func TestSimFeedZeroVariationIsStatic(t *testing.T) {
	t.Parallel()

	feed := NewSimFeed(DefaultRegistry(), 0)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	feed.SetClock(func() time.Time { return ts })

	q, err := feed.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.InDelta(t, 175.50-175.50*0.0002/2, q.Bid, 1e-9)
	assert.InDelta(t, 175.50+175.50*0.0002/2, q.Ask, 1e-9)
	assert.Equal(t, ts, q.Time)

	again, err := feed.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, q, again)
}

func TestSimFeedUnknownSymbol(t *testing.T) {
	t.Parallel()

	feed := NewSimFeed(DefaultRegistry(), DefaultVariation)
	_, err := feed.Quote(context.Background(), "ZZZ")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}

func TestSimFeedCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimFeed(DefaultRegistry(), 0).Quote(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedFeed(t *testing.T) {
	t.Parallel()

	feed := NewFixedFeed(DefaultRegistry())

	_, err := feed.Quote(context.Background(), "EUR/USD")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))

	require.NoError(t, feed.Set("EUR/USD", 1.0849, 1.0851))
	q, err := feed.Quote(context.Background(), "EUR/USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0849, q.Bid)
	assert.Equal(t, 1.0851, q.Ask)
	assert.InDelta(t, 0.0002, q.Spread, 1e-12)

	assert.Error(t, feed.Set("NOPE", 1, 1))
	assert.Error(t, feed.Set("EUR/USD", 2, 1))
}

func TestSnapshotSkipsUnknown(t *testing.T) {
	t.Parallel()

	feed := NewFixedFeed(DefaultRegistry())
	require.NoError(t, feed.SetMid("AAPL", 100))

	snap, err := Snapshot(context.Background(), feed, []string{"AAPL", "NOPE"})
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.Contains(t, snap, "AAPL")
}
