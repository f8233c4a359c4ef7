// Package metrics exposes engine and HTTP activity as Prometheus
// collectors. Metrics implements sim.Observer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/papertrader/sim"
)

const namespace = "papertrader"

var _ sim.Observer = (*Metrics)(nil)

type Metrics struct {
	registry *prometheus.Registry

	OrdersFilled    *prometheus.CounterVec
	OrdersRejected  *prometheus.CounterVec
	PositionsClosed *prometheus.CounterVec
	PositionsOpen   prometheus.Gauge
	RealizedPnL     prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New builds the collectors and registers them, with the Go and process
// collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_filled_total",
			Help:      "Orders filled, by asset type.",
		}, []string{"asset_type"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders rejected, by error kind.",
		}, []string{"kind"}),
		PositionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "position_closes_total",
			Help:      "Full and partial position closes, by reason.",
		}, []string{"reason"}),
		PositionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "positions_open",
			Help:      "Positions currently open across all accounts.",
		}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realized_pnl",
			Help:      "Sum of realized P&L across all accounts.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OrdersFilled,
		m.OrdersRejected,
		m.PositionsClosed,
		m.PositionsOpen,
		m.RealizedPnL,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) OrderFilled(o sim.Order) {
	m.OrdersFilled.WithLabelValues(string(o.AssetClass)).Inc()
	m.PositionsOpen.Inc()
}

func (m *Metrics) OrderRejected(_ string, kind sim.Kind) {
	m.OrdersRejected.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) PositionClosed(p sim.Position, realized float64, reason string) {
	m.PositionsClosed.WithLabelValues(reason).Inc()
	m.RealizedPnL.Add(realized)
	if !p.IsOpen() {
		m.PositionsOpen.Dec()
	}
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
