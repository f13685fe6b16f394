package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/assignment"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// Searcher recovers the credential of one dock
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Outcome, error)
}

// Metrics receives per-timestep scheduler instrumentation
type Metrics interface {
	SetDocksOccupied(n int)
	RecordShipDocked(queue vessel.QueueKind)
	RecordCargoMoves(n int)
}

type noOpMetrics struct{}

func (noOpMetrics) SetDocksOccupied(int)             {}
func (noOpMetrics) RecordShipDocked(vessel.QueueKind) {}
func (noOpMetrics) RecordCargoMoves(int)             {}

// StepReport summarizes what one timestep did
type StepReport struct {
	Timestep int
	Released []port.Release
	Ingested int
	Docked   []assignment.DockAssignment
	Moves    []assignment.CargoMove
	Searches []*search.Outcome
	Deferred []int
	Phases   map[int]port.Phase // dock id to phase at the end of the timestep
	Duration time.Duration
}

// Scheduler owns all port state: the dock registry, the ship queues and the
// per-dock search flags. Every method runs on the controller goroutine; only
// the searcher's workers run concurrently, and they never touch this state.
type Scheduler struct {
	registry *port.Registry
	queues   *vessel.QueueSet
	sink     port.EventSink
	searcher Searcher

	docks *assignment.DockAssigner
	cargo *assignment.CargoAssigner

	clock    shared.Clock
	metrics  Metrics
	lastStep int
	stepped  bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock sets the clock used to time steps
func WithClock(clock shared.Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics Metrics) Option {
	return func(s *Scheduler) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewScheduler wires the assignment engines around the registry
func NewScheduler(registry *port.Registry, sink port.EventSink, searcher Searcher, opts ...Option) *Scheduler {
	queues := vessel.NewQueueSet()
	s := &Scheduler{
		registry: registry,
		queues:   queues,
		sink:     sink,
		searcher: searcher,
		docks:    assignment.NewDockAssigner(registry, sink),
		cargo:    assignment.NewCargoAssigner(registry, queues, sink),
		clock:    shared.NewRealClock(),
		metrics:  noOpMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Registry() *port.Registry { return s.registry }
func (s *Scheduler) Queues() *vessel.QueueSet { return s.queues }

// Step processes one timestep:
//
//  1. free docks whose grace period elapsed and reset every crane
//  2. ingest the batch's requests into their queues
//  3. sort the queues
//  4. assign docks: emergency inbound, regular inbound, outbound
//  5. assign cranes to cargo at every occupied dock
//  6. search credentials for docks whose cargo completed
//  7. emit end of timestep
func (s *Scheduler) Step(ctx context.Context, batch *vessel.Batch) (*StepReport, error) {
	logger := common.LoggerFromContext(ctx)
	t := batch.Timestep
	start := s.clock.Now()

	if s.stepped && t <= s.lastStep {
		logger.Log(common.LevelWarning, fmt.Sprintf("Timestep %d does not advance past %d", t, s.lastStep), map[string]interface{}{
			"action":   "advance_timestep",
			"timestep": t,
		})
	}
	s.lastStep = t
	s.stepped = true

	report := &StepReport{Timestep: t}

	// 1. release and reset
	report.Released = s.registry.ReleaseReady(t)
	for _, rel := range report.Released {
		s.queues.Retire(rel.Occupant, rel.Dock.ID())
		logger.Log(common.LevelInfo, fmt.Sprintf("Released dock %d from ship %s", rel.Dock.ID(), rel.Occupant), map[string]interface{}{
			"action":    "release_dock",
			"timestep":  t,
			"dock_id":   rel.Dock.ID(),
			"ship_id":   rel.Occupant.ID,
			"direction": rel.Occupant.Direction.String(),
		})
	}
	s.registry.ResetCranes()

	// 2. ingest
	for _, req := range batch.Requests {
		ship, queue, created := s.queues.Ingest(req)
		if !created {
			logger.Log(common.LevelDebug, fmt.Sprintf("Refreshed ship %s", ship.Key()), map[string]interface{}{
				"action":   "ingest_requests",
				"timestep": t,
				"queue":    string(queue.Kind()),
				"docked":   ship.IsDocked(),
			})
		}
		report.Ingested++
	}

	// 3. sort
	s.queues.SortAll()

	// 4. docks
	docked, err := s.docks.AssignAll(ctx, s.queues, t)
	report.Docked = docked
	for _, a := range docked {
		s.metrics.RecordShipDocked(a.Queue)
		logger.Log(common.LevelInfo, fmt.Sprintf("Docked ship %s at dock %d", a.Ship.Key(), a.Dock.ID()), map[string]interface{}{
			"action":   "dock_ship",
			"timestep": t,
			"dock_id":  a.Dock.ID(),
			"queue":    string(a.Queue),
			"category": a.Ship.Category(),
		})
	}
	if err != nil {
		return report, fmt.Errorf("timestep %d: dock assignment: %w", t, err)
	}

	// 5. cargo
	moves, err := s.cargo.Assign(ctx, t)
	report.Moves = moves
	s.metrics.RecordCargoMoves(len(moves))
	if len(moves) > 0 {
		logger.Log(common.LevelDebug, fmt.Sprintf("Moved %d cargo items", len(moves)), map[string]interface{}{
			"action":   "move_cargo",
			"timestep": t,
			"moves":    len(moves),
		})
	}
	if err != nil {
		return report, fmt.Errorf("timestep %d: cargo assignment: %w", t, err)
	}

	// 6. searches, one dock at a time
	if err := s.runSearches(ctx, t, report); err != nil {
		return report, err
	}

	s.metrics.SetDocksOccupied(len(s.registry.Occupied()))
	report.Phases = make(map[int]port.Phase, s.registry.Len())
	for _, dock := range s.registry.Docks() {
		report.Phases[dock.ID()] = dock.Phase(t)
	}

	// 7. end of timestep
	if err := s.sink.Emit(ctx, port.NewEndTimestepEvent(t)); err != nil {
		return report, fmt.Errorf("timestep %d: failed to emit end_timestep: %w", t, err)
	}

	report.Duration = s.clock.Now().Sub(start)
	return report, nil
}

func (s *Scheduler) runSearches(ctx context.Context, t int, report *StepReport) error {
	logger := common.LoggerFromContext(ctx)

	for _, dock := range s.registry.Docks() {
		if dock.IsDesynchronized() && !dock.IsSearchDone() {
			report.Deferred = append(report.Deferred, dock.ID())
			logger.Log(common.LevelDebug, fmt.Sprintf("Deferring search for dock %d: %d of %d items moved", dock.ID(), dock.CargoMoved(), dock.ExpectedCargo()), map[string]interface{}{
				"action":   "search_credential",
				"timestep": t,
				"dock_id":  dock.ID(),
			})
			continue
		}
		if !dock.ReadyForSearch(t) {
			continue
		}

		if err := dock.BeginSearch(); err != nil {
			return fmt.Errorf("timestep %d: %w", t, err)
		}

		outcome, err := s.searcher.Search(ctx, search.Request{
			DockID:   dock.ID(),
			Ship:     dock.Occupant(),
			Length:   dock.CredentialLength(),
			Timestep: t,
		})
		if err != nil {
			return fmt.Errorf("timestep %d: %w", t, err)
		}

		dock.CompleteSearch(t, outcome.Found)
		report.Searches = append(report.Searches, outcome)

		if !outcome.Found {
			stall := shared.NewSearchExhaustedError(dock.ID(), outcome.Length, outcome.Queries)
			logger.Log(common.LevelWarning, stall.Error(), map[string]interface{}{
				"action":     "search_credential",
				"timestep":   t,
				"dock_id":    dock.ID(),
				"session_id": outcome.SessionID,
				"phase":      string(dock.Phase(t)),
			})
		}
	}
	return nil
}

// StalledDocks lists the ids of docks held by an exhausted search
func (s *Scheduler) StalledDocks() []int {
	var ids []int
	for _, dock := range s.registry.Stalled() {
		ids = append(ids, dock.ID())
	}
	return ids
}

// Idle reports whether no dock is occupied and no queued ship can still dock
func (s *Scheduler) Idle(timestep int) bool {
	return len(s.registry.Occupied()) == 0 && s.queues.Pending(timestep) == 0
}
