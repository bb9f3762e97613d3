package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RPCMetricsCollector handles daemon RPC metrics
type RPCMetricsCollector struct {
	rpcTotal       *prometheus.CounterVec
	rpcDuration    *prometheus.HistogramVec
	rpcRateLimited *prometheus.CounterVec
}

// NewRPCMetricsCollector creates a new RPC metrics collector
func NewRPCMetricsCollector() *RPCMetricsCollector {
	return &RPCMetricsCollector{
		// Total RPCs by method and status code
		rpcTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rpc_requests_total",
				Help:      "Total number of RPCs by method and status code",
			},
			[]string{"method", "code"},
		),

		// RPC duration histogram
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rpc_duration_seconds",
				Help:      "RPC duration distribution",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"method"},
		),

		// RPCs rejected by the rate limiter
		rpcRateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rpc_rate_limited_total",
				Help:      "Total number of RPCs rejected by the rate limiter",
			},
			[]string{"method"},
		),
	}
}

// Register registers all RPC metrics with the Prometheus registry
func (c *RPCMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.rpcTotal,
		c.rpcDuration,
		c.rpcRateLimited,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordRPC records a finished RPC
func (c *RPCMetricsCollector) RecordRPC(method string, code string, duration float64) {
	c.rpcTotal.WithLabelValues(method, code).Inc()
	c.rpcDuration.WithLabelValues(method).Observe(duration)
}

// RecordRateLimited records an RPC rejected by the rate limiter
func (c *RPCMetricsCollector) RecordRateLimited(method string) {
	c.rpcRateLimited.WithLabelValues(method).Inc()
}
