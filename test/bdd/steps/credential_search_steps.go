package steps

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

type credentialSearchContext struct {
	oracle  *helpers.ScriptedOracle
	store   *helpers.RecordingStore
	sink    *helpers.RecordingSink
	request search.Request
	workers int
	outcome *search.Outcome
	err     error

	firstQueries map[int][]string
}

func (sc *credentialSearchContext) reset() {
	sc.oracle = helpers.NewScriptedOracle()
	sc.store = helpers.NewRecordingStore()
	sc.sink = helpers.NewRecordingSink()
	sc.request = search.Request{}
	sc.workers = 0
	sc.outcome = nil
	sc.err = nil
	sc.firstQueries = nil
}

// Given steps

func (sc *credentialSearchContext) theOracleSecretForDockIs(dockID int, secret string) error {
	sc.oracle.WithSecret(dockID, secret)
	return nil
}

func (sc *credentialSearchContext) theOracleKnowsNoSecret() error {
	return nil
}

// When steps

func (sc *credentialSearchContext) workersSearchDockForACredentialOfLength(workers, dockID, length int) error {
	sc.workers = workers
	sc.request = search.Request{
		DockID:   dockID,
		Ship:     vessel.ShipKey{ID: 1, Direction: vessel.DirectionInbound},
		Length:   length,
		Timestep: 1,
	}
	sc.outcome, sc.err = sc.run()
	return nil
}

func (sc *credentialSearchContext) theSameSearchIsRepeated() error {
	sc.firstQueries = sc.oracle.AllQueries()
	sc.oracle.Reset()
	sc.sink.Reset()
	outcome, err := sc.run()
	if err != nil {
		return err
	}
	if sc.outcome != nil && outcome.WinnerWorker != sc.outcome.WinnerWorker {
		return fmt.Errorf("winner changed from worker %d to worker %d", sc.outcome.WinnerWorker, outcome.WinnerWorker)
	}
	sc.outcome = outcome
	return nil
}

func (sc *credentialSearchContext) run() (*search.Outcome, error) {
	orchestrator, err := search.NewOrchestrator(sc.oracle, sc.store, sc.sink, sc.workers)
	if err != nil {
		return nil, err
	}
	return orchestrator.Search(context.Background(), sc.request)
}

// Then steps

func (sc *credentialSearchContext) workerShouldHaveGuessed(workerID int, guesses string) error {
	got := sc.oracle.Queries(workerID)
	want := splitList(guesses)
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("worker %d: expected guesses %v, got %v", workerID, want, got)
	}
	return nil
}

func (sc *credentialSearchContext) workerShouldHaveStartedWith(workerID int, guesses string) error {
	got := sc.oracle.Queries(workerID)
	want := splitList(guesses)
	if len(got) < len(want) || !reflect.DeepEqual(got[:len(want)], want) {
		return fmt.Errorf("worker %d: expected guesses to start with %v, got %v", workerID, want, got)
	}
	return nil
}

func (sc *credentialSearchContext) theCredentialShouldBeRecoveredByWorker(credential string, workerID int) error {
	if sc.err != nil {
		return fmt.Errorf("search failed: %v", sc.err)
	}
	if !sc.outcome.Found || sc.outcome.Credential != credential || sc.outcome.WinnerWorker != workerID {
		return fmt.Errorf("expected %q from worker %d, got found=%v %q from worker %d",
			credential, workerID, sc.outcome.Found, sc.outcome.Credential, sc.outcome.WinnerWorker)
	}
	stored, ok := sc.store.Get(sc.request.DockID)
	if !ok || stored != credential {
		return fmt.Errorf("expected %q in the credential table, got %q", credential, stored)
	}
	return nil
}

func (sc *credentialSearchContext) undockEventsShouldBeEmitted(count int) error {
	undocks := sc.sink.OfKind(port.EventUndock)
	if len(undocks) != count {
		return fmt.Errorf("expected %d undock events, got %d", count, len(undocks))
	}
	return nil
}

func (sc *credentialSearchContext) theSearchShouldBeExhaustedAfterGuesses(queries int) error {
	if sc.err != nil {
		return fmt.Errorf("search failed: %v", sc.err)
	}
	if sc.outcome.Found {
		return fmt.Errorf("expected an exhausted search, found %q", sc.outcome.Credential)
	}
	if sc.outcome.Queries != int64(queries) {
		return fmt.Errorf("expected %d guesses, got %d", queries, sc.outcome.Queries)
	}
	return nil
}

func (sc *credentialSearchContext) oracleSessionsShouldHaveBeenOpened(count int) error {
	if sc.oracle.Sessions() != count {
		return fmt.Errorf("expected %d oracle sessions, got %d", count, sc.oracle.Sessions())
	}
	return nil
}

func (sc *credentialSearchContext) everyWorkerShouldHaveGuessedTheSameSequence() error {
	second := sc.oracle.AllQueries()
	if !reflect.DeepEqual(sc.firstQueries, second) {
		return fmt.Errorf("query sequences differ between runs")
	}
	return nil
}

func (sc *credentialSearchContext) theSearchShouldBeRejectedWith(expected string) error {
	if sc.err == nil {
		return fmt.Errorf("expected the search to be rejected with '%s'", expected)
	}
	if !strings.Contains(sc.err.Error(), expected) {
		return fmt.Errorf("expected error containing '%s', got '%s'", expected, sc.err.Error())
	}
	return nil
}

func InitializeCredentialSearchScenario(ctx *godog.ScenarioContext) {
	sc := &credentialSearchContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the oracle secret for dock (\d+) is "([^"]*)"$`, sc.theOracleSecretForDockIs)
	ctx.Step(`^the oracle knows no secret$`, sc.theOracleKnowsNoSecret)

	// When steps
	ctx.Step(`^(\d+) workers search dock (\d+) for a credential of length (\d+)$`, sc.workersSearchDockForACredentialOfLength)
	ctx.Step(`^the same search is repeated$`, sc.theSameSearchIsRepeated)

	// Then steps
	ctx.Step(`^worker (\d+) should have guessed "([^"]*)"$`, sc.workerShouldHaveGuessed)
	ctx.Step(`^worker (\d+) should have started with "([^"]*)"$`, sc.workerShouldHaveStartedWith)
	ctx.Step(`^the credential "([^"]*)" should be recovered by worker (\d+)$`, sc.theCredentialShouldBeRecoveredByWorker)
	ctx.Step(`^(\d+) undock events? should be emitted$`, sc.undockEventsShouldBeEmitted)
	ctx.Step(`^the search should be exhausted after (\d+) guesses$`, sc.theSearchShouldBeExhaustedAfterGuesses)
	ctx.Step(`^(\d+) oracle sessions? should have been opened$`, sc.oracleSessionsShouldHaveBeenOpened)
	ctx.Step(`^every worker should have guessed the same sequence$`, sc.everyWorkerShouldHaveGuessedTheSameSequence)
	ctx.Step(`^the search should be rejected with "([^"]*)"$`, sc.theSearchShouldBeRejectedWith)
}
