package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

const (
	// Namespace for all metrics
	namespace = "fabtycoon"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSimulationCollector is the singleton simulation metrics collector
	// Set by SetGlobalSimulationCollector() when metrics are enabled
	globalSimulationCollector SimulationMetricsRecorder

	// globalRPCCollector is the singleton RPC metrics collector
	globalRPCCollector RPCMetricsRecorder
)

// SimulationMetricsRecorder defines the interface for recording tick results
// This interface is used by application code to record metrics
type SimulationMetricsRecorder interface {
	RecordTick(summary *dtos.StateSummary, report simulation.Report)
	RecordAutosave(success bool)
}

// RPCMetricsRecorder defines the interface for recording daemon RPC metrics
type RPCMetricsRecorder interface {
	RecordRPC(method string, code string, duration float64)
	RecordRateLimited(method string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSimulationCollector sets the global simulation metrics collector
func SetGlobalSimulationCollector(collector SimulationMetricsRecorder) {
	globalSimulationCollector = collector
}

// RecordTick records the outcome of one advance globally
func RecordTick(summary *dtos.StateSummary, report simulation.Report) {
	if globalSimulationCollector != nil && summary != nil {
		globalSimulationCollector.RecordTick(summary, report)
	}
}

// RecordAutosave records an autosave attempt globally
func RecordAutosave(success bool) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordAutosave(success)
	}
}

// SetGlobalRPCCollector sets the global RPC metrics collector
func SetGlobalRPCCollector(collector RPCMetricsRecorder) {
	globalRPCCollector = collector
}

// RecordRPC records a finished daemon RPC globally
func RecordRPC(method string, code string, duration float64) {
	if globalRPCCollector != nil {
		globalRPCCollector.RecordRPC(method, code, duration)
	}
}

// RecordRateLimited records an RPC rejected by the rate limiter globally
func RecordRateLimited(method string) {
	if globalRPCCollector != nil {
		globalRPCCollector.RecordRateLimited(method)
	}
}
