package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/sim"
)

func TestObserverCounters(t *testing.T) {
	m := New()

	m.OrderFilled(sim.Order{AssetClass: market.Forex})
	m.OrderFilled(sim.Order{AssetClass: market.Forex})
	m.OrderFilled(sim.Order{AssetClass: market.Stock})
	m.OrderRejected("BTC/USD", sim.KindInsufficientMargin)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersFilled.WithLabelValues("forex")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersFilled.WithLabelValues("stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersRejected.WithLabelValues("insufficient_margin")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PositionsOpen))

	m.PositionClosed(sim.Position{Status: sim.PositionOpen}, 20, sim.ReasonManual)
	m.PositionClosed(sim.Position{Status: sim.PositionClosed}, -5, sim.ReasonStopLoss)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PositionsOpen))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.RealizedPnL))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionsClosed.WithLabelValues("stop_loss")))
}

func TestHTTPMetricsExposed(t *testing.T) {
	m := New()
	m.RecordHTTPRequest(http.MethodGet, "/health", 200, 3*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "papertrader_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
