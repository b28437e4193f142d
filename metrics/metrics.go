// Package metrics exposes the Prometheus collectors for the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fashion_store",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fashion_store",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	// OrdersPlaced counts successful checkouts.
	OrdersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fashion_store",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders placed.",
		},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, OrdersPlaced)
}

// RecordHTTPRequest feeds one completed request into the collectors.
func RecordHTTPRequest(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// Handler serves the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
