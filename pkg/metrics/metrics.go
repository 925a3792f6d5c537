// Package metrics exposes Prometheus collectors for the HTTP layer and the
// order lifecycle.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jewelry"

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	OrdersPlaced    *prometheus.CounterVec
	StatusChanges   *prometheus.CounterVec
	StockDecrements prometheus.Counter
	Invoices        *prometheus.CounterVec
	OutboxPublished *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed, by checkout kind.",
		}, []string{"kind"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Applied order status changes.",
		}, []string{"from", "to"}),
		StockDecrements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "stock_decrements_total",
			Help:      "Transitions into PAID that decremented stock.",
		}),
		Invoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "invoices_total",
			Help:      "Payment invoices created, by provider.",
		}, []string{"provider"}),
		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Outbox events processed, by result.",
		}, []string{"result"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.OrdersPlaced,
		m.StatusChanges,
		m.StockDecrements,
		m.Invoices,
		m.OutboxPublished,
	)
	return m
}

func (m *Metrics) ObserveRequest(handler, method string, status int, latencyMS float64) {
	m.Requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(latencyMS)
}

func (m *Metrics) OrderPlaced(guest bool) {
	kind := "account"
	if guest {
		kind = "guest"
	}
	m.OrdersPlaced.WithLabelValues(kind).Inc()
}

func (m *Metrics) StatusChanged(from, to string, decremented bool) {
	m.StatusChanges.WithLabelValues(from, to).Inc()
	if decremented {
		m.StockDecrements.Inc()
	}
}

func (m *Metrics) InvoiceCreated(provider string) {
	m.Invoices.WithLabelValues(provider).Inc()
}

func (m *Metrics) OutboxProcessed(published bool) {
	result := "published"
	if !published {
		result = "failed"
	}
	m.OutboxPublished.WithLabelValues(result).Inc()
}

// Handler serves the registry this Metrics was created with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
