// Package metrics exposes Prometheus instruments for store operations and
// storefront API calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/store"
)

var (
	// StoreOperations counts lifecycle transitions per store operation.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_operations_total",
			Help: "Store operation lifecycle transitions by store, operation and phase",
		},
		[]string{"store", "op", "phase"},
	)

	// StoreOperationDuration observes how long settled operations took.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_store_operation_duration_seconds",
			Help:    "Duration of settled store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "op", "phase"},
	)

	// StoreInFlight tracks operations that have not settled yet.
	StoreInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_store_operations_in_flight",
			Help: "Store operations currently awaiting the storefront API",
		},
		[]string{"store"},
	)

	// GatewayRequests counts storefront API calls by endpoint and outcome.
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_gateway_requests_total",
			Help: "Storefront API requests by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	// GatewayDuration observes storefront API call latency.
	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_gateway_request_duration_seconds",
			Help:    "Storefront API request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
)

// StoreListener returns a store.Listener that records every lifecycle event.
func StoreListener() store.Listener {
	return func(e store.Event) {
		StoreOperations.WithLabelValues(e.Store, string(e.Kind), string(e.Phase)).Inc()
		if e.Phase == store.PhasePending {
			StoreInFlight.WithLabelValues(e.Store).Inc()
			return
		}
		StoreInFlight.WithLabelValues(e.Store).Dec()
		StoreOperationDuration.WithLabelValues(e.Store, string(e.Kind), string(e.Phase)).Observe(e.Elapsed.Seconds())
	}
}

// ObserveGateway records one storefront API call. status is the HTTP status
// code, or 0 when no response was received.
func ObserveGateway(endpoint string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	GatewayRequests.WithLabelValues(endpoint, code).Inc()
	GatewayDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
