package assignment

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// CargoMove records one crane bound to one cargo item for a timestep
type CargoMove struct {
	DockID     int
	Ship       vessel.ShipKey
	CraneID    int
	CargoIndex int
	Weight     int
}

// CargoAssigner greedily matches each occupied dock's cranes to its ship's cargo.
//
// Cranes are visited in descending capacity. Each crane takes the heaviest
// unmoved item it can lift. The first crane that finds nothing ends the dock's
// pass for the timestep: items are weight-sorted, so smaller cranes are not
// tried. This under-assigns compared with a full matching and is kept as is.
type CargoAssigner struct {
	registry *port.Registry
	queues   *vessel.QueueSet
	sink     port.EventSink
}

func NewCargoAssigner(registry *port.Registry, queues *vessel.QueueSet, sink port.EventSink) *CargoAssigner {
	return &CargoAssigner{registry: registry, queues: queues, sink: sink}
}

// Assign runs one pass over every occupied dock. Cargo never moves during the
// timestep the ship docked.
func (a *CargoAssigner) Assign(ctx context.Context, timestep int) ([]CargoMove, error) {
	var moves []CargoMove

	for _, dock := range a.registry.Occupied() {
		if dock.IsCargoDone() {
			continue
		}

		ship, ok := a.queues.FindDocked(dock.Occupant(), dock.ID())
		if !ok || timestep <= ship.DockedAt() {
			continue
		}

		if ship.CargoCount() == 0 {
			dock.MarkCargoDone(timestep)
			continue
		}

		dockMoves, err := a.assignDock(ctx, dock, ship, timestep)
		moves = append(moves, dockMoves...)
		if err != nil {
			return moves, err
		}
	}

	return moves, nil
}

func (a *CargoAssigner) assignDock(ctx context.Context, dock *port.Dock, ship *vessel.Ship, timestep int) ([]CargoMove, error) {
	var moves []CargoMove

	for _, crane := range dock.Cranes() {
		if ship.AllCargoMoved() {
			break
		}
		if crane.IsUsed() {
			continue
		}

		item := ship.NextCargoFor(crane.Capacity())
		if item == nil {
			break
		}

		if err := crane.MarkUsed(); err != nil {
			return moves, fmt.Errorf("dock %d: %w", dock.ID(), err)
		}
		if err := ship.MoveCargo(item); err != nil {
			return moves, fmt.Errorf("dock %d: %w", dock.ID(), err)
		}
		dock.RecordCargoMove()

		event := port.NewMoveCargoEvent(timestep, ship.Key(), dock.ID(), item.OriginalIndex(), crane.ID())
		if err := a.sink.Emit(ctx, event); err != nil {
			return moves, fmt.Errorf("failed to emit move_cargo event: %w", err)
		}

		moves = append(moves, CargoMove{
			DockID:     dock.ID(),
			Ship:       ship.Key(),
			CraneID:    crane.ID(),
			CargoIndex: item.OriginalIndex(),
			Weight:     item.Weight(),
		})

		if ship.AllCargoMoved() {
			dock.MarkCargoDone(timestep)
		}
	}

	return moves, nil
}
