// Package metrics provides Prometheus instrumentation for gatewei.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled     bool
	serviceName string

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Verification domain metrics
	verificationTotal    *prometheus.CounterVec
	verificationDuration prometheus.Histogram

	// Chain RPC metrics
	rpcRequestsTotal *prometheus.CounterVec

	// Resource metadata cache metrics
	resourceCacheTotal *prometheus.CounterVec

	// Record store metrics
	recordOpsTotal *prometheus.CounterVec
)

// Init initializes the metrics system.
func Init(enabledFlag bool, svcName string) {
	enabled = enabledFlag
	serviceName = svcName

	if !enabled {
		return
	}

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	verificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_total",
			Help: "Total number of payment verification attempts",
		},
		[]string{"outcome"},
	)

	verificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verification_duration_seconds",
			Help:    "Payment verification latency in seconds, chain reads included",
			Buckets: prometheus.DefBuckets,
		},
	)

	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_requests_total",
			Help: "Total number of chain JSON-RPC round trips",
		},
		[]string{"method", "status"},
	)

	resourceCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_cache_total",
			Help: "Resource metadata cache lookups by result",
		},
		[]string{"result"},
	)

	recordOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_total",
			Help: "Verification record store operations",
		},
		[]string{"backend", "op", "status"},
	)

	// Go runtime metrics (goroutines, memory, GC) are collected by
	// prometheus/client_golang's default registerer already.
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.Handler()
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}

// ServiceName returns the configured service name for metric labels.
func ServiceName() string {
	return serviceName
}
