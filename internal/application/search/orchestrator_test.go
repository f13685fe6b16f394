package search_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

type countingMetrics struct {
	mu       sync.Mutex
	queries  map[int]int
	outcomes []string
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{queries: make(map[int]int)}
}

func (m *countingMetrics) RecordQuery(workerID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[workerID]++
}

func (m *countingMetrics) RecordSearch(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

var ship = vessel.ShipKey{ID: 7, Direction: vessel.DirectionInbound}

func newOrchestrator(t *testing.T, oracle *helpers.ScriptedOracle, store *helpers.RecordingStore, sink *helpers.RecordingSink, workers int, opts ...search.Option) *search.Orchestrator {
	t.Helper()
	o, err := search.NewOrchestrator(oracle, store, sink, workers, opts...)
	require.NoError(t, err)
	return o
}

func TestNewOrchestrator_RejectsUnsupportedPoolSizes(t *testing.T) {
	for _, workers := range []int{0, 1, 9} {
		_, err := search.NewOrchestrator(helpers.NewScriptedOracle(), helpers.NewRecordingStore(), helpers.NewRecordingSink(), workers)

		var unsupported *shared.UnsupportedWorkerCountError
		assert.True(t, errors.As(err, &unsupported), "workers=%d", workers)
	}
}

func TestSearch_FastPathStopsAtTheSecret(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(2, "7")
	store := helpers.NewRecordingStore()
	sink := helpers.NewRecordingSink()
	o := newOrchestrator(t, oracle, store, sink, 3)

	// Act
	outcome, err := o.Search(context.Background(), search.Request{DockID: 2, Ship: ship, Length: 1, Timestep: 4})

	// Assert
	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "7", outcome.Credential)
	assert.Equal(t, 0, outcome.WinnerWorker)
	assert.Equal(t, int64(3), outcome.Queries)
	assert.Equal(t, []string{"5", "6", "7"}, oracle.Queries(0))
	assert.Equal(t, 1, oracle.Sessions())

	credential, ok := store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "7", credential)

	undocks := sink.OfKind(port.EventUndock)
	require.Len(t, undocks, 1)
	assert.Equal(t, port.NewUndockEvent(4, ship, 2), undocks[0])
}

func TestSearch_WinnerIsTheWorkerOwningThePrefix(t *testing.T) {
	// Arrange: buckets are {5,6} {7,8} {9}
	oracle := helpers.NewScriptedOracle().WithSecret(0, "87")
	store := helpers.NewRecordingStore()
	sink := helpers.NewRecordingSink()
	o := newOrchestrator(t, oracle, store, sink, 3)

	// Act
	outcome, err := o.Search(context.Background(), search.Request{DockID: 0, Ship: ship, Length: 2, Timestep: 3})

	// Assert
	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "87", outcome.Credential)
	assert.Equal(t, 1, outcome.WinnerWorker)
	assert.Equal(t, []string{"75", "76", "77", "78", "79", "85", "86", "87"}, oracle.Queries(1))

	worker0 := []string{"55", "56", "57", "58", "59", "65", "66", "67", "68", "69"}
	worker2 := []string{"95", "96", "97", "98", "99"}
	for w, expected := range map[int][]string{0: worker0, 2: worker2} {
		q := oracle.Queries(w)
		require.LessOrEqual(t, len(q), len(expected), "worker %d guessed outside its bucket", w)
		if len(q) > 0 {
			assert.Equal(t, expected[:len(q)], q, "losers stop early but keep their order")
		}
	}

	for w := 0; w < 3; w++ {
		assert.Equal(t, []int{0}, oracle.SetDocks(w), "worker %d binds its session to the dock once", w)
	}

	assert.Equal(t, 1, store.Puts())
	assert.Len(t, sink.OfKind(port.EventUndock), 1)
	assert.Equal(t, int64(oracle.TotalQueries()), outcome.Queries)
}

func TestSearch_ExhaustedSearchIsNotAnError(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle()
	store := helpers.NewRecordingStore()
	sink := helpers.NewRecordingSink()
	metrics := newCountingMetrics()
	o := newOrchestrator(t, oracle, store, sink, 2, search.WithMetrics(metrics))

	// Act
	outcome, err := o.Search(context.Background(), search.Request{DockID: 1, Ship: ship, Length: 3, Timestep: 9})

	// Assert
	require.NoError(t, err)
	assert.False(t, outcome.Found)
	assert.Equal(t, -1, outcome.WinnerWorker)
	assert.Equal(t, int64(5*6*5), outcome.Queries)
	assert.Equal(t, int64(3*6*5), outcome.WorkerQueries[0])
	assert.Equal(t, int64(2*6*5), outcome.WorkerQueries[1])
	assert.Zero(t, store.Puts())
	assert.Empty(t, sink.Events())

	assert.Equal(t, []string{search.OutcomeExhausted}, metrics.outcomes)
	assert.Equal(t, 90, metrics.queries[0])
	assert.Equal(t, 60, metrics.queries[1])
}

func TestSearch_WorkerSequencesAreDeterministic(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle()
	o := newOrchestrator(t, oracle, helpers.NewRecordingStore(), helpers.NewRecordingSink(), 4)
	req := search.Request{DockID: 3, Ship: ship, Length: 3, Timestep: 2}

	// Act
	_, err := o.Search(context.Background(), req)
	require.NoError(t, err)
	first := oracle.AllQueries()
	oracle.Reset()
	_, err = o.Search(context.Background(), req)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first, oracle.AllQueries())
	require.Len(t, first, 4)
	assert.Equal(t, "555", first[0][0])
	assert.Equal(t, "755", first[1][0])
	assert.Equal(t, "855", first[2][0])
	assert.Equal(t, "955", first[3][0])
}

func TestSearch_MoreWorkersThanPrefixes(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(5, "99")
	o := newOrchestrator(t, oracle, helpers.NewRecordingStore(), helpers.NewRecordingSink(), 8)

	// Act
	outcome, err := o.Search(context.Background(), search.Request{DockID: 5, Ship: ship, Length: 2, Timestep: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, oracle.Sessions(), "empty buckets are not launched")
	assert.Equal(t, 4, outcome.WinnerWorker)
}

func TestSearch_GuessFailureIsReturned(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(0, "99")
	oracle.GuessErr = errors.New("oracle connection lost")
	oracle.FailAtGuess = 1
	metrics := newCountingMetrics()
	o := newOrchestrator(t, oracle, helpers.NewRecordingStore(), helpers.NewRecordingSink(), 2, search.WithMetrics(metrics))

	// Act
	outcome, err := o.Search(context.Background(), search.Request{DockID: 0, Ship: ship, Length: 2, Timestep: 1})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, oracle.GuessErr)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Found)
	assert.Equal(t, []string{search.OutcomeFailed}, metrics.outcomes)
}

func TestSearch_SessionFailureIsReturned(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle()
	oracle.SessionErr = errors.New("dial refused")
	o := newOrchestrator(t, oracle, helpers.NewRecordingStore(), helpers.NewRecordingSink(), 2)

	// Act
	_, err := o.Search(context.Background(), search.Request{DockID: 0, Ship: ship, Length: 2, Timestep: 1})

	// Assert
	assert.ErrorIs(t, err, oracle.SessionErr)
}

func TestSearch_StoreFailureIsReturned(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(0, "5")
	store := helpers.NewRecordingStore()
	store.FailErr = errors.New("disk full")
	sink := helpers.NewRecordingSink()
	o := newOrchestrator(t, oracle, store, sink, 2)

	// Act
	_, err := o.Search(context.Background(), search.Request{DockID: 0, Ship: ship, Length: 1, Timestep: 1})

	// Assert
	assert.ErrorIs(t, err, store.FailErr)
	assert.Empty(t, sink.OfKind(port.EventUndock), "no undock without a stored credential")
}

func TestSearch_RateLimitedWorkersStillFindTheSecret(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(0, "6")
	o := newOrchestrator(t, oracle, helpers.NewRecordingStore(), helpers.NewRecordingSink(), 2, search.WithRateLimit(1000, 5))

	// Act
	outcome, err := o.Search(context.Background(), search.Request{DockID: 0, Ship: ship, Length: 1, Timestep: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "6", outcome.Credential)
}

func TestSearch_CancelledContextStopsWorkers(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	oracle := helpers.NewScriptedOracle()
	o := newOrchestrator(t, oracle, helpers.NewRecordingStore(), helpers.NewRecordingSink(), 2, search.WithRateLimit(1, 1))

	// Act
	_, err := o.Search(ctx, search.Request{DockID: 0, Ship: ship, Length: 4, Timestep: 1})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}
