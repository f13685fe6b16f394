package vessel

import (
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// Ship is a vessel waiting for, or occupying, a dock.
//
// Invariants:
//   - A ship is docked at most once; the dock linkage is never rewritten
//   - Each cargo item is moved at most once
//   - cutoff is always arrival + waitingTime
type Ship struct {
	id          int
	direction   Direction
	arrival     int
	category    int
	emergency   bool
	waitingTime int
	cutoff      int

	cargo      []*CargoItem
	cargoMoved int

	docked   bool
	dockID   int
	dockedAt int
}

// NewShip creates a ship from its first request
func NewShip(req ShipRequest) *Ship {
	s := &Ship{dockID: -1}
	s.Refresh(req)
	return s
}

// Refresh applies a repeated request for the same (id, direction) key.
//
// Business Rules:
//   - Request fields overwrite the previous values and the cutoff is recomputed
//   - The cargo manifest is replaced and the moved count starts over
//   - A docked ship keeps its dock linkage; it is never re-docked elsewhere
func (s *Ship) Refresh(req ShipRequest) {
	s.id = req.ShipID
	s.direction = req.Direction
	s.arrival = req.Timestep
	s.category = req.Category
	s.emergency = req.Emergency
	s.waitingTime = req.WaitingTime
	s.cutoff = req.Timestep + req.WaitingTime
	s.cargo = NewCargoManifest(req.Cargo)
	s.cargoMoved = 0
}

// Getters

func (s *Ship) ID() int              { return s.id }
func (s *Ship) Direction() Direction { return s.direction }
func (s *Ship) Arrival() int         { return s.arrival }
func (s *Ship) Category() int        { return s.category }
func (s *Ship) IsEmergency() bool    { return s.emergency }
func (s *Ship) WaitingTime() int     { return s.waitingTime }
func (s *Ship) Cutoff() int          { return s.cutoff }
func (s *Ship) Cargo() []*CargoItem  { return s.cargo }
func (s *Ship) CargoCount() int      { return len(s.cargo) }
func (s *Ship) CargoMoved() int      { return s.cargoMoved }
func (s *Ship) IsDocked() bool       { return s.docked }
func (s *Ship) DockID() int          { return s.dockID }
func (s *Ship) DockedAt() int        { return s.dockedAt }

func (s *Ship) Key() ShipKey {
	return ShipKey{ID: s.id, Direction: s.direction}
}

// IsExpired reports whether a regular inbound ship has passed its cutoff.
// Emergency and outbound ships never expire.
func (s *Ship) IsExpired(timestep int) bool {
	return s.direction == DirectionInbound && !s.emergency && timestep > s.cutoff
}

// IsDockable reports whether the ship may be offered a dock at the given timestep
func (s *Ship) IsDockable(timestep int) bool {
	if s.docked || s.direction == DirectionNone {
		return false
	}
	return !s.IsExpired(timestep)
}

// DockAt links the ship to a dock
func (s *Ship) DockAt(dockID, timestep int) error {
	if s.docked {
		return shared.NewShipAlreadyDockedError(s.id, int(s.direction), s.dockID)
	}
	s.docked = true
	s.dockID = dockID
	s.dockedAt = timestep
	return nil
}

// IsDockedAt reports whether the ship is linked to the given dock
func (s *Ship) IsDockedAt(dockID int) bool {
	return s.docked && s.dockID == dockID
}

// NextCargoFor returns the heaviest unmoved item a crane of the given capacity
// can lift, or nil when none fits
func (s *Ship) NextCargoFor(capacity int) *CargoItem {
	for _, item := range s.cargo {
		if !item.moved && item.weight <= capacity {
			return item
		}
	}
	return nil
}

// MoveCargo marks an item of this ship as moved
func (s *Ship) MoveCargo(item *CargoItem) error {
	if item.moved {
		return fmt.Errorf("cargo item %d of ship %s already moved", item.originalIndex, s.Key())
	}
	item.moved = true
	s.cargoMoved++
	return nil
}

// AllCargoMoved reports whether every item of the manifest has been moved
func (s *Ship) AllCargoMoved() bool {
	return s.cargoMoved >= len(s.cargo)
}

func (s *Ship) String() string {
	return fmt.Sprintf("Ship(%s, cat=%d, cargo=%d/%d)", s.Key(), s.category, s.cargoMoved, len(s.cargo))
}
