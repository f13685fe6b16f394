package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "portsched"

	schedulerSubsystem = "scheduler"
	searchSubsystem    = "search"
)

// NewRegistry creates a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func registerAll(registry prometheus.Registerer, metrics ...prometheus.Collector) error {
	if registry == nil {
		return nil // Metrics not enabled
	}
	for _, metric := range metrics {
		if err := registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
