package scheduler

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// RunSummary totals a completed run
type RunSummary struct {
	Timesteps    int
	ShipsDocked  int
	CargoMoves   int
	Credentials  int
	StalledDocks []int
}

// Controller drives a Scheduler from a Simulator, one batch at a time
type Controller struct {
	scheduler *Scheduler
	simulator port.Simulator
	onStep    func(*StepReport)
}

// NewController creates a controller. onStep, when set, observes every report.
func NewController(scheduler *Scheduler, simulator port.Simulator, onStep func(*StepReport)) *Controller {
	return &Controller{scheduler: scheduler, simulator: simulator, onStep: onStep}
}

// Run processes batches until the simulator sends the terminating sentinel.
// Any boundary failure ends the run with an error.
func (c *Controller) Run(ctx context.Context) (*RunSummary, error) {
	logger := common.LoggerFromContext(ctx)
	summary := &RunSummary{}

	logger.Log(common.LevelInfo, "Scheduler run started", map[string]interface{}{
		"action": "run",
		"docks":  c.scheduler.Registry().Len(),
	})

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		batch, err := c.simulator.NextBatch(ctx)
		if err != nil {
			return summary, fmt.Errorf("failed to receive batch: %w", err)
		}
		if batch.Finished {
			break
		}

		report, err := c.scheduler.Step(ctx, batch)
		if err != nil {
			return summary, err
		}

		summary.Timesteps++
		summary.ShipsDocked += len(report.Docked)
		summary.CargoMoves += len(report.Moves)
		for _, outcome := range report.Searches {
			if outcome.Found {
				summary.Credentials++
			}
		}

		if c.onStep != nil {
			c.onStep(report)
		}
	}

	summary.StalledDocks = c.scheduler.StalledDocks()

	logger.Log(common.LevelInfo, "Scheduler run finished", map[string]interface{}{
		"action":       "run",
		"timesteps":    summary.Timesteps,
		"ships_docked": summary.ShipsDocked,
		"cargo_moves":  summary.CargoMoves,
		"credentials":  summary.Credentials,
		"stalled":      len(summary.StalledDocks),
	})

	return summary, nil
}
