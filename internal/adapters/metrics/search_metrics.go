package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetricsCollector records credential search activity
type SearchMetricsCollector struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
	searches *prometheus.CounterVec
}

// NewSearchMetricsCollector creates the search collectors
func NewSearchMetricsCollector() *SearchMetricsCollector {
	return &SearchMetricsCollector{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: searchSubsystem,
				Name:      "queries_total",
				Help:      "Total number of oracle guesses by worker",
			},
			[]string{"worker"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: searchSubsystem,
				Name:      "duration_seconds",
				Help:      "Credential search duration distribution",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: searchSubsystem,
				Name:      "total",
				Help:      "Total number of credential searches by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *SearchMetricsCollector) Register(registry prometheus.Registerer) error {
	return registerAll(registry, c.queries, c.duration, c.searches)
}

func (c *SearchMetricsCollector) RecordQuery(workerID int) {
	c.queries.WithLabelValues(strconv.Itoa(workerID)).Inc()
}

func (c *SearchMetricsCollector) RecordSearch(outcome string, duration time.Duration) {
	c.searches.WithLabelValues(outcome).Inc()
	c.duration.Observe(duration.Seconds())
}
