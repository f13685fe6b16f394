package port

import (
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// EventKind names a notification sent to the simulator
type EventKind string

const (
	EventDock        EventKind = "dock"
	EventMoveCargo   EventKind = "move_cargo"
	EventUndock      EventKind = "undock"
	EventEndTimestep EventKind = "end_timestep"
)

// Event is a fire-and-forget notification for the simulator. Fields that do
// not apply to the kind are -1.
type Event struct {
	Kind       EventKind
	Timestep   int
	ShipID     int
	Direction  vessel.Direction
	DockID     int
	CargoIndex int
	CraneID    int
}

func NewDockEvent(timestep int, ship vessel.ShipKey, dockID int) Event {
	return Event{
		Kind:       EventDock,
		Timestep:   timestep,
		ShipID:     ship.ID,
		Direction:  ship.Direction,
		DockID:     dockID,
		CargoIndex: -1,
		CraneID:    -1,
	}
}

func NewMoveCargoEvent(timestep int, ship vessel.ShipKey, dockID, cargoIndex, craneID int) Event {
	return Event{
		Kind:       EventMoveCargo,
		Timestep:   timestep,
		ShipID:     ship.ID,
		Direction:  ship.Direction,
		DockID:     dockID,
		CargoIndex: cargoIndex,
		CraneID:    craneID,
	}
}

func NewUndockEvent(timestep int, ship vessel.ShipKey, dockID int) Event {
	return Event{
		Kind:       EventUndock,
		Timestep:   timestep,
		ShipID:     ship.ID,
		Direction:  ship.Direction,
		DockID:     dockID,
		CargoIndex: -1,
		CraneID:    -1,
	}
}

func NewEndTimestepEvent(timestep int) Event {
	return Event{
		Kind:       EventEndTimestep,
		Timestep:   timestep,
		ShipID:     -1,
		DockID:     -1,
		CargoIndex: -1,
		CraneID:    -1,
	}
}

func (e Event) String() string {
	switch e.Kind {
	case EventDock, EventUndock:
		return fmt.Sprintf("t=%d %s ship=%d dir=%s dock=%d", e.Timestep, e.Kind, e.ShipID, e.Direction, e.DockID)
	case EventMoveCargo:
		return fmt.Sprintf("t=%d %s ship=%d dir=%s dock=%d cargo=%d crane=%d",
			e.Timestep, e.Kind, e.ShipID, e.Direction, e.DockID, e.CargoIndex, e.CraneID)
	default:
		return fmt.Sprintf("t=%d %s", e.Timestep, e.Kind)
	}
}
