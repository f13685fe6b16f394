package assignment

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// DockAssignment records one ship linked to one dock
type DockAssignment struct {
	Ship  *vessel.Ship
	Dock  *port.Dock
	Queue vessel.QueueKind
}

// DockAssigner greedily matches queued ships to free docks.
//
// Each ship is offered the first free dock, in the registry's ascending-category
// order, whose category is at least the ship's. Ships without a direction,
// ships already docked and expired regular inbound ships are skipped.
type DockAssigner struct {
	registry *port.Registry
	sink     port.EventSink
}

func NewDockAssigner(registry *port.Registry, sink port.EventSink) *DockAssigner {
	return &DockAssigner{registry: registry, sink: sink}
}

// Assign runs one pass over a sorted queue. A dock event is emitted for every
// match; ships left unmatched stay pending without an event.
func (a *DockAssigner) Assign(ctx context.Context, queue *vessel.Queue, timestep int) ([]DockAssignment, error) {
	var assignments []DockAssignment

	for _, ship := range queue.Ships() {
		if !ship.IsDockable(timestep) {
			continue
		}

		dock := a.registry.FirstFit(ship.Category())
		if dock == nil {
			continue
		}

		if err := dock.Occupy(ship, timestep); err != nil {
			return assignments, fmt.Errorf("failed to occupy dock %d: %w", dock.ID(), err)
		}
		if err := ship.DockAt(dock.ID(), timestep); err != nil {
			return assignments, fmt.Errorf("failed to dock ship %s: %w", ship.Key(), err)
		}

		if err := a.sink.Emit(ctx, port.NewDockEvent(timestep, ship.Key(), dock.ID())); err != nil {
			return assignments, fmt.Errorf("failed to emit dock event: %w", err)
		}

		assignments = append(assignments, DockAssignment{Ship: ship, Dock: dock, Queue: queue.Kind()})
	}

	return assignments, nil
}

// AssignAll runs Assign over the queues in priority order
func (a *DockAssigner) AssignAll(ctx context.Context, queues *vessel.QueueSet, timestep int) ([]DockAssignment, error) {
	var all []DockAssignment
	for _, queue := range queues.InPriorityOrder() {
		assignments, err := a.Assign(ctx, queue, timestep)
		all = append(all, assignments...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
