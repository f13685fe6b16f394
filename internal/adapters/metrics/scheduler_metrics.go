package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// SchedulerMetricsCollector records per-timestep scheduler activity
type SchedulerMetricsCollector struct {
	docksOccupied prometheus.Gauge
	shipsDocked   *prometheus.CounterVec
	cargoMoves    prometheus.Counter
}

// NewSchedulerMetricsCollector creates the scheduler collectors
func NewSchedulerMetricsCollector() *SchedulerMetricsCollector {
	return &SchedulerMetricsCollector{
		docksOccupied: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: schedulerSubsystem,
				Name:      "docks_occupied",
				Help:      "Number of docks hosting a ship at the end of the last timestep",
			},
		),
		shipsDocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: schedulerSubsystem,
				Name:      "ships_docked_total",
				Help:      "Total number of ships docked by priority queue",
			},
			[]string{"queue"},
		),
		cargoMoves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: schedulerSubsystem,
				Name:      "cargo_moves_total",
				Help:      "Total number of cargo items moved by cranes",
			},
		),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *SchedulerMetricsCollector) Register(registry prometheus.Registerer) error {
	return registerAll(registry, c.docksOccupied, c.shipsDocked, c.cargoMoves)
}

func (c *SchedulerMetricsCollector) SetDocksOccupied(n int) {
	c.docksOccupied.Set(float64(n))
}

func (c *SchedulerMetricsCollector) RecordShipDocked(queue vessel.QueueKind) {
	c.shipsDocked.WithLabelValues(string(queue)).Inc()
}

func (c *SchedulerMetricsCollector) RecordCargoMoves(n int) {
	if n > 0 {
		c.cargoMoves.Add(float64(n))
	}
}
