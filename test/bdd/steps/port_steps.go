package steps

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portscheduler-go/internal/application/scheduler"
	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

type craneKey struct {
	dockID  int
	craneID int
}

type portContext struct {
	specs    []port.DockSpec
	workers  int
	oracle   *helpers.ScriptedOracle
	sink     *helpers.RecordingSink
	store    *helpers.RecordingStore
	arrivals map[int][]vessel.ShipRequest

	sched   *scheduler.Scheduler
	reports map[int]*scheduler.StepReport
	err     error

	invariantErr error
	orderErr     error
	lastWeight   map[craneKey]int

	// set by the journal steps
	journal *journal
}

func (pc *portContext) reset() {
	pc.specs = nil
	pc.workers = 3
	pc.oracle = helpers.NewScriptedOracle()
	pc.sink = helpers.NewRecordingSink()
	pc.store = helpers.NewRecordingStore()
	pc.arrivals = make(map[int][]vessel.ShipRequest)
	pc.sched = nil
	pc.reports = make(map[int]*scheduler.StepReport)
	pc.err = nil
	pc.invariantErr = nil
	pc.orderErr = nil
	pc.lastWeight = make(map[craneKey]int)
	pc.journal = nil
}

// Given steps

func (pc *portContext) aPortWithDocks(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		category, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return fmt.Errorf("invalid category %q", row.Cells[0].Value)
		}
		cranes, err := splitInts(row.Cells[1].Value)
		if err != nil {
			return err
		}
		pc.specs = append(pc.specs, port.DockSpec{Category: category, Cranes: cranes})
	}
	return nil
}

func (pc *portContext) aSearchPoolOfWorkers(workers int) error {
	pc.workers = workers
	return nil
}

func (pc *portContext) theSecretForDockIs(dockID int, secret string) error {
	pc.oracle.WithSecret(dockID, secret)
	return nil
}

func (pc *portContext) aShipArrives(emergency, direction string, shipID, category, waiting int, cargo string, timestep int) error {
	weights, err := splitInts(cargo)
	if err != nil {
		return err
	}
	dir, err := vessel.ParseDirection(direction)
	if err != nil {
		return err
	}
	pc.arrivals[timestep] = append(pc.arrivals[timestep], vessel.ShipRequest{
		ShipID:      shipID,
		Timestep:    timestep,
		Category:    category,
		Direction:   dir,
		Emergency:   strings.TrimSpace(emergency) == "emergency",
		WaitingTime: waiting,
		Cargo:       weights,
	})
	return nil
}

// When steps

func (pc *portContext) thePortRunsTimestepsTo(from, to int) error {
	if pc.sched == nil {
		if err := pc.build(); err != nil {
			pc.err = err
			return nil
		}
	}

	ctx := context.Background()
	for t := from; t <= to; t++ {
		report, err := pc.sched.Step(ctx, &vessel.Batch{Timestep: t, Requests: pc.arrivals[t]})
		pc.reports[t] = report
		if err != nil {
			pc.err = err
			return nil
		}
		pc.checkStep(report)
	}
	return nil
}

func (pc *portContext) build() error {
	registry, err := port.NewRegistryFromSpecs(pc.specs)
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}

	var sink port.EventSink = pc.sink
	var store port.AuthStringStore = pc.store
	if pc.journal != nil {
		sink, store, err = pc.journal.wrap(sink, store, len(pc.specs), pc.workers)
		if err != nil {
			return err
		}
	}

	orchestrator, err := search.NewOrchestrator(pc.oracle, store, sink, pc.workers)
	if err != nil {
		return err
	}
	pc.sched = scheduler.NewScheduler(registry, sink, orchestrator)
	return nil
}

// checkStep verifies the registry and the weight ordering after every step
func (pc *portContext) checkStep(report *scheduler.StepReport) {
	if pc.invariantErr == nil {
		if err := pc.sched.Registry().CheckInvariants(); err != nil {
			pc.invariantErr = fmt.Errorf("timestep %d: %w", report.Timestep, err)
		}
	}
	if pc.invariantErr == nil {
		for _, dock := range pc.sched.Registry().Occupied() {
			ship, ok := pc.sched.Queues().FindDocked(dock.Occupant(), dock.ID())
			if !ok {
				pc.invariantErr = fmt.Errorf("timestep %d: occupant of dock %d is not queued", report.Timestep, dock.ID())
				break
			}
			if ship.Category() > dock.Category() {
				pc.invariantErr = fmt.Errorf("timestep %d: ship %s of category %d at dock %d of category %d",
					report.Timestep, ship.Key(), ship.Category(), dock.ID(), dock.Category())
				break
			}
		}
	}

	if pc.orderErr != nil {
		return
	}
	lastInStep := make(map[int]int)
	for _, m := range report.Moves {
		if prev, ok := lastInStep[m.DockID]; ok && m.Weight > prev {
			pc.orderErr = fmt.Errorf("timestep %d: dock %d moved %d after %d", report.Timestep, m.DockID, m.Weight, prev)
			return
		}
		lastInStep[m.DockID] = m.Weight

		key := craneKey{dockID: m.DockID, craneID: m.CraneID}
		if prev, ok := pc.lastWeight[key]; ok && m.Weight > prev {
			pc.orderErr = fmt.Errorf("timestep %d: crane %d at dock %d moved %d after %d",
				report.Timestep, m.CraneID, m.DockID, m.Weight, prev)
			return
		}
		pc.lastWeight[key] = m.Weight
	}
}

// Then steps

func (pc *portContext) theRunShouldSucceed() error {
	return pc.err
}

func (pc *portContext) theRunShouldFailWith(expected string) error {
	if pc.err == nil {
		return fmt.Errorf("expected the run to fail with '%s'", expected)
	}
	if !strings.Contains(pc.err.Error(), expected) {
		return fmt.Errorf("expected error containing '%s', got '%s'", expected, pc.err.Error())
	}
	return nil
}

func (pc *portContext) shipShouldBeDockedAtDockAtTimestep(shipID, dockID, timestep int) error {
	for _, e := range pc.sink.OfKind(port.EventDock) {
		if e.ShipID == shipID {
			if e.DockID != dockID || e.Timestep != timestep {
				return fmt.Errorf("ship %d docked at dock %d at timestep %d, expected dock %d at timestep %d",
					shipID, e.DockID, e.Timestep, dockID, timestep)
			}
			return nil
		}
	}
	return fmt.Errorf("ship %d never docked", shipID)
}

func (pc *portContext) shipShouldNeverDock(shipID int) error {
	for _, e := range pc.sink.OfKind(port.EventDock) {
		if e.ShipID == shipID {
			return fmt.Errorf("ship %d docked at dock %d at timestep %d", shipID, e.DockID, e.Timestep)
		}
	}
	return nil
}

func (pc *portContext) theCargoMovesAtTimestepShouldBe(timestep int, table *godog.Table) error {
	type move struct{ dock, crane, cargo int }

	var want []move
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		var m move
		var err error
		if m.dock, err = strconv.Atoi(row.Cells[0].Value); err != nil {
			return err
		}
		if m.crane, err = strconv.Atoi(row.Cells[1].Value); err != nil {
			return err
		}
		if m.cargo, err = strconv.Atoi(row.Cells[2].Value); err != nil {
			return err
		}
		want = append(want, m)
	}

	var got []move
	for _, e := range pc.sink.AtTimestep(timestep) {
		if e.Kind == port.EventMoveCargo {
			got = append(got, move{dock: e.DockID, crane: e.CraneID, cargo: e.CargoIndex})
		}
	}

	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("timestep %d: expected moves %v, got %v", timestep, want, got)
	}
	return nil
}

func (pc *portContext) noCargoShouldMoveAtTimestep(timestep int) error {
	for _, e := range pc.sink.AtTimestep(timestep) {
		if e.Kind == port.EventMoveCargo {
			return fmt.Errorf("timestep %d: unexpected move of cargo %d by crane %d", timestep, e.CargoIndex, e.CraneID)
		}
	}
	return nil
}

func (pc *portContext) theEventsAtTimestepShouldBe(timestep int, kinds string) error {
	var got []string
	for _, e := range pc.sink.AtTimestep(timestep) {
		got = append(got, string(e.Kind))
	}
	want := splitList(kinds)
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("timestep %d: expected events %v, got %v", timestep, want, got)
	}
	return nil
}

func (pc *portContext) dockShouldBeReleasedAtTimestep(dockID, timestep int) error {
	for t, report := range pc.reports {
		if report == nil {
			continue
		}
		for _, rel := range report.Released {
			if rel.Dock.ID() != dockID {
				continue
			}
			if t != timestep {
				return fmt.Errorf("dock %d released at timestep %d, expected %d", dockID, t, timestep)
			}
			return nil
		}
	}
	return fmt.Errorf("dock %d was never released", dockID)
}

func (pc *portContext) theCredentialForDockShouldBe(dockID int, expected string) error {
	got, ok := pc.store.Get(dockID)
	if !ok {
		return fmt.Errorf("no credential recorded for dock %d", dockID)
	}
	if got != expected {
		return fmt.Errorf("dock %d: expected credential %q, got %q", dockID, expected, got)
	}
	return nil
}

func (pc *portContext) noCredentialShouldBeRecordedForDock(dockID int) error {
	if got, ok := pc.store.Get(dockID); ok {
		return fmt.Errorf("dock %d: unexpected credential %q", dockID, got)
	}
	return nil
}

func (pc *portContext) dockShouldBeStalled(dockID int) error {
	for _, id := range pc.sched.StalledDocks() {
		if id == dockID {
			return nil
		}
	}
	return fmt.Errorf("dock %d is not stalled (stalled: %v)", dockID, pc.sched.StalledDocks())
}

func (pc *portContext) thePortShouldBeIdleAtTimestep(timestep int) error {
	if !pc.sched.Idle(timestep) {
		return fmt.Errorf("port is not idle at timestep %d", timestep)
	}
	return nil
}

func (pc *portContext) theRegistryInvariantsShouldHoldAtEveryTimestep() error {
	return pc.invariantErr
}

func (pc *portContext) cargoWeightsShouldNeverIncrease() error {
	return pc.orderErr
}

func (pc *portContext) everyMovedCargoShouldBeWithinItsCranesCapacity() error {
	registry, err := port.NewRegistryFromSpecs(pc.specs)
	if err != nil {
		return err
	}
	for t, report := range pc.reports {
		if report == nil {
			continue
		}
		for _, m := range report.Moves {
			dock, err := registry.Dock(m.DockID)
			if err != nil {
				return err
			}
			for _, crane := range dock.Cranes() {
				if crane.ID() == m.CraneID && m.Weight > crane.Capacity() {
					return fmt.Errorf("timestep %d: crane %d of capacity %d lifted %d", t, crane.ID(), crane.Capacity(), m.Weight)
				}
			}
		}
	}
	return nil
}

func InitializePortScenario(ctx *godog.ScenarioContext) {
	pc := &portContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a port with docks:$`, pc.aPortWithDocks)
	ctx.Step(`^a search pool of (\d+) workers$`, pc.aSearchPoolOfWorkers)
	ctx.Step(`^the secret for dock (\d+) is "([^"]*)"$`, pc.theSecretForDockIs)
	ctx.Step(`^an? (emergency )?(inbound|outbound) ship (\d+) of category (\d+) waiting (\d+) with cargo "([^"]*)" arrives at timestep (\d+)$`, pc.aShipArrives)

	// When steps
	ctx.Step(`^the port runs timesteps (\d+) to (\d+)$`, pc.thePortRunsTimestepsTo)

	// Then steps
	ctx.Step(`^the run should succeed$`, pc.theRunShouldSucceed)
	ctx.Step(`^the run should fail with "([^"]*)"$`, pc.theRunShouldFailWith)
	ctx.Step(`^ship (\d+) should be docked at dock (\d+) at timestep (\d+)$`, pc.shipShouldBeDockedAtDockAtTimestep)
	ctx.Step(`^ship (\d+) should never dock$`, pc.shipShouldNeverDock)
	ctx.Step(`^the cargo moves at timestep (\d+) should be:$`, pc.theCargoMovesAtTimestepShouldBe)
	ctx.Step(`^no cargo should move at timestep (\d+)$`, pc.noCargoShouldMoveAtTimestep)
	ctx.Step(`^the events at timestep (\d+) should be "([^"]*)"$`, pc.theEventsAtTimestepShouldBe)
	ctx.Step(`^dock (\d+) should be released at timestep (\d+)$`, pc.dockShouldBeReleasedAtTimestep)
	ctx.Step(`^the credential for dock (\d+) should be "([^"]*)"$`, pc.theCredentialForDockShouldBe)
	ctx.Step(`^no credential should be recorded for dock (\d+)$`, pc.noCredentialShouldBeRecordedForDock)
	ctx.Step(`^dock (\d+) should be stalled$`, pc.dockShouldBeStalled)
	ctx.Step(`^the port should be idle at timestep (\d+)$`, pc.thePortShouldBeIdleAtTimestep)
	ctx.Step(`^the registry invariants should hold at every timestep$`, pc.theRegistryInvariantsShouldHoldAtEveryTimestep)
	ctx.Step(`^cargo weights should never increase per crane or within a timestep$`, pc.cargoWeightsShouldNeverIncrease)
	ctx.Step(`^every moved cargo should be within its crane's capacity$`, pc.everyMovedCargoShouldBeWithinItsCranesCapacity)

	registerJournalSteps(ctx, pc)
}
