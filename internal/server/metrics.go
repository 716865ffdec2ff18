package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the HTTP surface.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tradesCreated   prometheus.Counter
	tradesClosed    prometheus.Counter
}

// NewMetrics registers the journal's metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "journal_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tradesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "journal_trades_created_total",
			Help: "Trades logged since process start.",
		}),
		tradesClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "journal_trades_closed_total",
			Help: "Trades closed since process start.",
		}),
	}
}
