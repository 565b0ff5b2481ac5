package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records quote cart activity.
type CartMetrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	hydration  prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer. A nil
// registerer yields a no-op instance, which keeps tests and workers quiet.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_cart_operations_total",
		Help: "Quote cart mutations by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_cart_failures_total",
		Help: "Cart persistence and hydration failures by kind.",
	}, []string{"kind"})
	hydration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_cart_hydration_seconds",
		Help:    "Duration of cart snapshot hydration.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(operations, failures, hydration)
	return &CartMetrics{
		operations: operations,
		failures:   failures,
		hydration:  hydration,
	}
}

// IncOperation increments the counter for the named mutation.
func (c *CartMetrics) IncOperation(op string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named kind.
func (c *CartMetrics) IncFailure(kind string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveHydration records how long a snapshot load took.
func (c *CartMetrics) ObserveHydration(duration time.Duration) {
	if c == nil || c.hydration == nil {
		return
	}
	c.hydration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
