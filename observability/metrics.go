package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// CorridorMetrics aggregates the engine-facing Prometheus collectors.
type CorridorMetrics struct {
	intentsCreated *prometheus.CounterVec
	settlements    *prometheus.CounterVec
	batchOutcomes  *prometheus.CounterVec
	matchedAmount  prometheus.Histogram
	requestErrors  *prometheus.CounterVec
}

var (
	corridorMetricsOnce sync.Once
	corridorRegistry    *CorridorMetrics
)

// Metrics returns the lazily-initialised metrics registry shared across the
// daemon.
func Metrics() *CorridorMetrics {
	corridorMetricsOnce.Do(func() {
		corridorRegistry = &CorridorMetrics{
			intentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "corridord",
				Subsystem: "intents",
				Name:      "created_total",
				Help:      "Total intents recorded in the ledger segmented by direction.",
			}, []string{"direction"}),
			settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "corridord",
				Subsystem: "intents",
				Name:      "settled_total",
				Help:      "Total intents settled segmented by entry point.",
			}, []string{"mode"}),
			batchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "corridord",
				Subsystem: "netting",
				Name:      "batches_total",
				Help:      "Batch netting calls segmented by outcome.",
			}, []string{"outcome"}),
			matchedAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "corridord",
				Subsystem: "netting",
				Name:      "matched_amount",
				Help:      "Distribution of peer-to-peer matched volume per batch.",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 12),
			}),
			requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "corridord",
				Subsystem: "http",
				Name:      "errors_total",
				Help:      "HTTP handler errors segmented by route and status.",
			}, []string{"route", "status"}),
		}
		prometheus.MustRegister(
			corridorRegistry.intentsCreated,
			corridorRegistry.settlements,
			corridorRegistry.batchOutcomes,
			corridorRegistry.matchedAmount,
			corridorRegistry.requestErrors,
		)
	})
	return corridorRegistry
}

// ObserveIntentCreated records a ledger insert.
func (m *CorridorMetrics) ObserveIntentCreated(direction string) {
	if m == nil {
		return
	}
	m.intentsCreated.WithLabelValues(direction).Inc()
}

// ObserveSettlement records one settled intent for the supplied entry point
// ("single" or "batch").
func (m *CorridorMetrics) ObserveSettlement(mode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.settlements.WithLabelValues(mode).Add(float64(count))
}

// ObserveBatch records the outcome of one netting call and, when it succeeded,
// the matched volume. Amounts beyond float precision saturate.
func (m *CorridorMetrics) ObserveBatch(outcome string, matched *big.Int) {
	if m == nil {
		return
	}
	m.batchOutcomes.WithLabelValues(outcome).Inc()
	if matched == nil {
		return
	}
	value, _ := new(big.Float).SetInt(matched).Float64()
	m.matchedAmount.Observe(value)
}

// ObserveHTTPError records a handler failure.
func (m *CorridorMetrics) ObserveHTTPError(route, status string) {
	if m == nil {
		return
	}
	m.requestErrors.WithLabelValues(route, status).Inc()
}
