// Package metrics exposes Prometheus instrumentation for the ledger,
// checkout and HTTP layers.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. All methods are safe on a nil receiver.
type Metrics struct {
	mutations        *prometheus.CounterVec
	mutationUnits    *prometheus.CounterVec
	shortages        *prometheus.CounterVec
	checkouts        *prometheus.CounterVec
	checkoutDuration *prometheus.HistogramVec
	checkoutAmount   prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	idempotentReplay prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventra_stock_mutations_total",
			Help: "Committed stock mutations by transaction type.",
		}, []string{"type"}),
		mutationUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventra_stock_mutation_units_total",
			Help: "Absolute quantity moved by committed mutations, by transaction type.",
		}, []string{"type"}),
		shortages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventra_stock_shortages_total",
			Help: "Mutations rejected for insufficient stock, by transaction type.",
		}, []string{"type"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventra_checkouts_total",
			Help: "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		checkoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventra_checkout_duration_seconds",
			Help:    "Checkout latency by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		checkoutAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventra_checkout_amount_minor_total",
			Help: "Sum of finalized invoice totals in minor currency units.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventra_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventra_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		idempotentReplay: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventra_idempotent_replays_total",
			Help: "Responses served from a stored idempotency record.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.mutations, m.mutationUnits, m.shortages,
			m.checkouts, m.checkoutDuration, m.checkoutAmount,
			m.httpRequests, m.httpDuration, m.idempotentReplay,
		)
	}
	return m
}

// RecordMutation counts a committed ledger entry.
func (m *Metrics) RecordMutation(txnType string, delta int64) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(txnType).Inc()
	if delta < 0 {
		delta = -delta
	}
	m.mutationUnits.WithLabelValues(txnType).Add(float64(delta))
}

// RecordShortage counts a mutation rejected for insufficient stock.
func (m *Metrics) RecordShortage(txnType string) {
	if m == nil {
		return
	}
	m.shortages.WithLabelValues(txnType).Inc()
}

// RecordCheckout counts a checkout attempt.
func (m *Metrics) RecordCheckout(outcome string, _ int, total int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
	m.checkoutDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if total > 0 {
		m.checkoutAmount.Add(float64(total))
	}
}

// ObserveHTTP records one served request. route is the matched pattern.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordReplay counts an idempotent replay.
func (m *Metrics) RecordReplay() {
	if m == nil {
		return
	}
	m.idempotentReplay.Inc()
}
