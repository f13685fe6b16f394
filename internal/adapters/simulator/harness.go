package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/andrescamacho/portscheduler-go/internal/application/scheduler"
	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// HarnessOptions adjusts a local scenario run
type HarnessOptions struct {
	// Workers overrides the scenario's worker count when non-zero
	Workers int

	// Docks replaces the scenario's layout when non-empty
	Docks []port.DockSpec

	// Trace receives one line per event when set
	Trace io.Writer

	// WrapSink decorates the event sink, e.g. with a journal
	WrapSink func(port.EventSink) port.EventSink

	// Store receives credentials in addition to the in-memory table
	Store port.AuthStringStore

	SchedulerOptions []scheduler.Option
	SearchOptions    []search.Option
	OnStep           func(*scheduler.StepReport)
}

// HarnessResult is everything a local run produced
type HarnessResult struct {
	Summary     *scheduler.RunSummary
	Events      []port.Event
	Credentials *MemoryAuthStrings
	Oracle      *MemoryOracle
	Scheduler   *scheduler.Scheduler
}

// RunScenario replays a scenario in-process against a MemoryOracle
func RunScenario(ctx context.Context, sc *Scenario, opts HarnessOptions) (*HarnessResult, error) {
	specs := sc.DockSpecs()
	if len(opts.Docks) > 0 {
		specs = opts.Docks
	}
	registry, err := port.NewRegistryFromSpecs(specs)
	if err != nil {
		return nil, fmt.Errorf("invalid dock layout: %w", err)
	}

	workers := sc.Workers
	if opts.Workers != 0 {
		workers = opts.Workers
	}

	oracle := NewMemoryOracle(sc.Seed)
	for dockID, secret := range sc.Secrets {
		oracle.SetSecret(dockID, secret)
	}

	trace := NewTraceSink(opts.Trace)
	var sink port.EventSink = trace
	if opts.WrapSink != nil {
		sink = opts.WrapSink(sink)
	}

	credentials := NewMemoryAuthStrings()
	var store port.AuthStringStore = credentials
	if opts.Store != nil {
		store = TeeAuthStrings{credentials, opts.Store}
	}

	orchestrator, err := search.NewOrchestrator(oracle, store, sink, workers, opts.SearchOptions...)
	if err != nil {
		return nil, err
	}
	sched := scheduler.NewScheduler(registry, sink, orchestrator, opts.SchedulerOptions...)

	batches, err := sc.Batches()
	if err != nil {
		return nil, err
	}
	sim := NewChannelSimulator(len(batches))
	for _, batch := range batches[:len(batches)-1] {
		if err := sim.Send(ctx, batch); err != nil {
			return nil, err
		}
	}
	if err := sim.Finish(ctx); err != nil {
		return nil, err
	}

	summary, err := scheduler.NewController(sched, sim, opts.OnStep).Run(ctx)
	result := &HarnessResult{
		Summary:     summary,
		Events:      trace.Events(),
		Credentials: credentials,
		Oracle:      oracle,
		Scheduler:   sched,
	}
	if err != nil {
		return result, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	return result, nil
}
