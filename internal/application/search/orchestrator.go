package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/domain/credential"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
	"github.com/andrescamacho/portscheduler-go/pkg/utils"
)

// Search outcomes reported to Metrics
const (
	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "failed"
)

// Metrics receives search instrumentation
type Metrics interface {
	RecordQuery(workerID int)
	RecordSearch(outcome string, duration time.Duration)
}

type noOpMetrics struct{}

func (noOpMetrics) RecordQuery(int)                   {}
func (noOpMetrics) RecordSearch(string, time.Duration) {}

// Request describes the dock whose credential is recovered
type Request struct {
	DockID   int
	Ship     vessel.ShipKey
	Length   int
	Timestep int
}

// Outcome is the result of one dock's search
type Outcome struct {
	SessionID     string
	DockID        int
	Length        int
	Found         bool
	Credential    string
	WinnerWorker  int
	Queries       int64
	WorkerQueries map[int]int64
	Duration      time.Duration
}

// Orchestrator recovers dock credentials by brute force against the oracle.
//
// Each search partitions the candidate space into static buckets, one per
// worker, and runs the workers concurrently. Every worker owns its own oracle
// session and issues one guess at a time. A shared found flag is checked before
// each guess; the first worker to flip it is the only one that records the
// credential and emits the undock event. Search waits for every worker before
// returning.
type Orchestrator struct {
	dialer  port.OracleDialer
	store   port.AuthStringStore
	sink    port.EventSink
	workers int

	rateLimit rate.Limit
	burst     int
	clock     shared.Clock
	metrics   Metrics
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithRateLimit caps each worker's oracle queries per second. Zero disables the limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *Orchestrator) {
		if perSecond <= 0 {
			o.rateLimit = rate.Inf
			return
		}
		o.rateLimit = rate.Limit(perSecond)
		if burst < 1 {
			burst = 1
		}
		o.burst = burst
	}
}

// WithClock sets the clock used to time searches
func WithClock(clock shared.Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics Metrics) Option {
	return func(o *Orchestrator) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// NewOrchestrator creates an orchestrator with a pool of the given size
func NewOrchestrator(
	dialer port.OracleDialer,
	store port.AuthStringStore,
	sink port.EventSink,
	workers int,
	opts ...Option,
) (*Orchestrator, error) {
	if err := credential.ValidateWorkers(workers); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		dialer:    dialer,
		store:     store,
		sink:      sink,
		workers:   workers,
		rateLimit: rate.Inf,
		burst:     1,
		clock:     shared.NewRealClock(),
		metrics:   noOpMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Workers returns the configured pool size
func (o *Orchestrator) Workers() int { return o.workers }

// searchState is shared by the workers of one search
type searchState struct {
	found   atomic.Bool
	queries atomic.Int64

	// written only by the winning worker
	winner     int
	credential string

	mu            sync.Mutex
	workerQueries map[int]int64
}

func (s *searchState) countQuery(workerID int) {
	s.queries.Add(1)
	s.mu.Lock()
	s.workerQueries[workerID]++
	s.mu.Unlock()
}

// Search runs one dock's credential search to completion.
//
// An exhausted search is not an error: the outcome reports Found=false. A
// transport failure on the oracle, the store or the sink cancels the remaining
// workers and is returned.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Outcome, error) {
	logger := common.LoggerFromContext(ctx)

	plan, err := credential.NewPlan(req.DockID, req.Length, o.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to plan search for dock %d: %w", req.DockID, err)
	}

	sessionID := utils.GenerateSessionID(req.DockID, req.Timestep)
	start := o.clock.Now()

	logger.Log(common.LevelInfo, fmt.Sprintf("Starting credential search for dock %d", req.DockID), map[string]interface{}{
		"action":     "search_credential",
		"session_id": sessionID,
		"dock_id":    req.DockID,
		"ship_id":    req.Ship.ID,
		"length":     req.Length,
		"workers":    len(plan.Assignments),
		"fast_path":  plan.FastPath,
		"space":      plan.Size(),
	})

	state := &searchState{winner: -1, workerQueries: make(map[int]int64)}

	g, gctx := errgroup.WithContext(ctx)
	for _, assignment := range plan.Assignments {
		g.Go(func() error {
			return o.runWorker(gctx, plan, assignment, req, state)
		})
	}
	err = g.Wait()

	outcome := &Outcome{
		SessionID:     sessionID,
		DockID:        req.DockID,
		Length:        req.Length,
		Found:         state.found.Load(),
		Credential:    state.credential,
		WinnerWorker:  state.winner,
		Queries:       state.queries.Load(),
		WorkerQueries: state.workerQueries,
		Duration:      o.clock.Now().Sub(start),
	}

	if err != nil {
		o.metrics.RecordSearch(OutcomeFailed, outcome.Duration)
		logger.Log(common.LevelError, fmt.Sprintf("Credential search for dock %d failed: %v", req.DockID, err), map[string]interface{}{
			"action":     "search_credential",
			"session_id": sessionID,
			"dock_id":    req.DockID,
			"queries":    outcome.Queries,
		})
		return outcome, fmt.Errorf("credential search for dock %d: %w", req.DockID, err)
	}

	if outcome.Found {
		o.metrics.RecordSearch(OutcomeFound, outcome.Duration)
		logger.Log(common.LevelInfo, fmt.Sprintf("Recovered credential for dock %d", req.DockID), map[string]interface{}{
			"action":     "search_credential",
			"session_id": sessionID,
			"dock_id":    req.DockID,
			"worker":     outcome.WinnerWorker,
			"queries":    outcome.Queries,
			"duration":   outcome.Duration.String(),
		})
	} else {
		o.metrics.RecordSearch(OutcomeExhausted, outcome.Duration)
	}

	return outcome, nil
}

func (o *Orchestrator) runWorker(
	ctx context.Context,
	plan *credential.Plan,
	assignment credential.WorkerAssignment,
	req Request,
	state *searchState,
) error {
	session, err := o.dialer.Session(ctx, assignment.WorkerID)
	if err != nil {
		return fmt.Errorf("worker %d: failed to open oracle session: %w", assignment.WorkerID, err)
	}
	defer session.Close()

	if err := session.SetDock(ctx, plan.DockID); err != nil {
		return fmt.Errorf("worker %d: failed to set dock: %w", assignment.WorkerID, err)
	}

	var limiter *rate.Limiter
	if o.rateLimit != rate.Inf {
		limiter = rate.NewLimiter(o.rateLimit, o.burst)
	}

	for candidate := range plan.Candidates(assignment) {
		if state.found.Load() {
			return nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("worker %d: rate limiter: %w", assignment.WorkerID, err)
			}
		}

		ok, err := session.Guess(ctx, plan.DockID, candidate)
		state.countQuery(assignment.WorkerID)
		o.metrics.RecordQuery(assignment.WorkerID)
		if err != nil {
			return fmt.Errorf("worker %d: guess failed: %w", assignment.WorkerID, err)
		}

		if ok {
			if !state.found.CompareAndSwap(false, true) {
				return nil
			}
			state.winner = assignment.WorkerID
			state.credential = candidate
			return o.announce(ctx, req, candidate)
		}
	}

	return nil
}

// announce publishes the winner's credential and the undock event
func (o *Orchestrator) announce(ctx context.Context, req Request, candidate string) error {
	if err := o.store.Put(ctx, req.DockID, candidate); err != nil {
		return fmt.Errorf("failed to store credential for dock %d: %w", req.DockID, err)
	}
	if err := o.sink.Emit(ctx, port.NewUndockEvent(req.Timestep, req.Ship, req.DockID)); err != nil {
		return fmt.Errorf("failed to emit undock event: %w", err)
	}
	return nil
}
