package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/persistence"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/simulator"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

// journal persists a port run to the shared test database
type journal struct {
	runID string
	runs  *persistence.GormRunRepository
}

func (j *journal) wrap(sink port.EventSink, store port.AuthStringStore, docks, workers int) (port.EventSink, port.AuthStringStore, error) {
	if err := j.runs.Start(context.Background(), j.runID, "bdd", docks, workers); err != nil {
		return nil, nil, err
	}
	db := helpers.SharedTestDB
	journaled := persistence.NewJournalSink(sink, db, j.runID, nil)
	tee := simulator.TeeAuthStrings{store, persistence.NewGormAuthStringStore(db, j.runID, nil)}
	return journaled, tee, nil
}

// Given steps

func (pc *portContext) theRunIsJournaledAs(runID string) error {
	if helpers.SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}
	pc.journal = &journal{
		runID: runID,
		runs:  persistence.NewGormRunRepository(helpers.SharedTestDB, nil),
	}
	return nil
}

// Then steps

func (pc *portContext) theJournalShouldReplayTheEmittedEventsInOrder() error {
	if pc.journal == nil {
		return fmt.Errorf("run is not journaled")
	}
	records, err := pc.journal.runs.Events(context.Background(), pc.journal.runID, nil, 0)
	if err != nil {
		return err
	}
	emitted := pc.sink.Events()
	if len(records) != len(emitted) {
		return fmt.Errorf("journal holds %d events, %d were emitted", len(records), len(emitted))
	}
	for i, rec := range records {
		e := emitted[i]
		if rec.Sequence != i+1 || rec.Kind != string(e.Kind) || rec.Timestep != e.Timestep ||
			rec.ShipID != e.ShipID || rec.DockID != e.DockID || rec.CargoIndex != e.CargoIndex || rec.CraneID != e.CraneID {
			return fmt.Errorf("journal entry %d is %+v, emitted %s", i+1, rec, e)
		}
	}
	return nil
}

func (pc *portContext) theJournalShouldHoldEventsOfKind(count int, kind string) error {
	if pc.journal == nil {
		return fmt.Errorf("run is not journaled")
	}
	records, err := pc.journal.runs.Events(context.Background(), pc.journal.runID, &kind, 0)
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("expected %d %s events in the journal, got %d", count, kind, len(records))
	}
	return nil
}

func (pc *portContext) theJournaledCredentialForDockShouldBe(dockID int, expected string) error {
	if pc.journal == nil {
		return fmt.Errorf("run is not journaled")
	}
	credentials, err := pc.journal.runs.Credentials(context.Background(), pc.journal.runID)
	if err != nil {
		return err
	}
	if got := credentials[dockID]; got != expected {
		return fmt.Errorf("dock %d: expected journaled credential %q, got %q", dockID, expected, got)
	}
	return nil
}

func (pc *portContext) theRunShouldBeRecordedAsRunning() error {
	if pc.journal == nil {
		return fmt.Errorf("run is not journaled")
	}
	run, err := pc.journal.runs.FindByID(context.Background(), pc.journal.runID)
	if err != nil {
		return err
	}
	if run.Status != persistence.RunStatusRunning {
		return fmt.Errorf("expected run status %s, got %s", persistence.RunStatusRunning, run.Status)
	}
	if run.Docks != len(pc.specs) || run.Workers != pc.workers {
		return fmt.Errorf("run recorded %d docks and %d workers", run.Docks, run.Workers)
	}
	return nil
}

func hasTag(tags []*messages.PickleTag, name string) bool {
	for _, tag := range tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

func registerJournalSteps(ctx *godog.ScenarioContext, pc *portContext) {
	// Journal scenarios start from empty tables
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		if hasTag(sc.Tags, "@journal") {
			if err := helpers.TruncateAllTables(); err != nil {
				return ctx, err
			}
		}
		return ctx, nil
	})

	ctx.Step(`^the run is journaled as "([^"]*)"$`, pc.theRunIsJournaledAs)

	ctx.Step(`^the journal should replay the emitted events in order$`, pc.theJournalShouldReplayTheEmittedEventsInOrder)
	ctx.Step(`^the journal should hold (\d+) "([^"]*)" events?$`, pc.theJournalShouldHoldEventsOfKind)
	ctx.Step(`^the journaled credential for dock (\d+) should be "([^"]*)"$`, pc.theJournaledCredentialForDockShouldBe)
	ctx.Step(`^the run should be recorded as running$`, pc.theRunShouldBeRecordedAsRunning)
}
