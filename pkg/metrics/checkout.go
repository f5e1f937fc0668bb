package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the outcome of order placement attempts.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	orders   prometheus.Counter
	failures *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders created through checkout.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts rejected, labelled by error code.",
	}, []string{"code"})
	reg.MustRegister(duration, orders, failures)
	return &CheckoutMetrics{
		duration: duration,
		orders:   orders,
		failures: failures,
	}
}

// ObserveSuccess records a completed checkout.
func (c *CheckoutMetrics) ObserveSuccess(elapsed time.Duration) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.Inc()
	c.duration.WithLabelValues("success").Observe(elapsed.Seconds())
}

// ObserveFailure records a rejected checkout with its error code.
func (c *CheckoutMetrics) ObserveFailure(code string, elapsed time.Duration) {
	if c == nil || c.failures == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	c.failures.WithLabelValues(code).Inc()
	c.duration.WithLabelValues("failure").Observe(elapsed.Seconds())
}
