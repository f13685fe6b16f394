package port

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// Phase is the lifecycle position of a dock
type Phase string

const (
	PhaseFree            Phase = "FREE"
	PhaseOccupied        Phase = "OCCUPIED"
	PhaseCargoInProgress Phase = "CARGO_IN_PROGRESS"
	PhaseCargoComplete   Phase = "CARGO_COMPLETE"
	PhaseSearching       Phase = "SEARCHING"
	PhaseUndockPending   Phase = "UNDOCK_PENDING"
	PhaseStalled         Phase = "STALLED"
)

// ReleaseDelay is the number of timesteps between cargo completion and the
// dock returning to the free pool
const ReleaseDelay = 2

// Dock hosts one ship at a time.
//
// Lifecycle:
//
//	FREE → OCCUPIED → CARGO_IN_PROGRESS → CARGO_COMPLETE → SEARCHING → UNDOCK_PENDING → FREE
//
// A search that exhausts its space leaves the dock STALLED; it is never released.
type Dock struct {
	id       int
	category int
	cranes   []*Crane // descending capacity, fixed at setup

	occupied      bool
	occupant      vessel.ShipKey
	expectedCargo int
	cargoMoved    int
	dockedAt      int
	cargoDoneAt   int

	searching       bool
	searchDone      bool
	credentialFound bool
	searchedAt      int
}

// NewDock creates a dock whose crane ids are their positions in capacities.
// Cranes are ordered by descending capacity; equal capacities keep id order.
func NewDock(id, category int, capacities []int) (*Dock, error) {
	if category < 1 {
		return nil, shared.NewValidationError("category", fmt.Sprintf("dock %d category must be positive, got %d", id, category))
	}
	if len(capacities) == 0 {
		return nil, shared.NewValidationError("cranes", fmt.Sprintf("dock %d has no cranes", id))
	}

	cranes := make([]*Crane, 0, len(capacities))
	for i, capacity := range capacities {
		crane, err := NewCrane(i, capacity)
		if err != nil {
			return nil, fmt.Errorf("dock %d: %w", id, err)
		}
		cranes = append(cranes, crane)
	}
	sort.SliceStable(cranes, func(i, j int) bool {
		return cranes[i].capacity > cranes[j].capacity
	})

	return &Dock{
		id:       id,
		category: category,
		cranes:   cranes,
		occupant: vessel.ShipKey{ID: -1, Direction: vessel.DirectionNone},
	}, nil
}

// Getters

func (d *Dock) ID() int                  { return d.id }
func (d *Dock) Category() int            { return d.category }
func (d *Dock) Cranes() []*Crane         { return d.cranes }
func (d *Dock) IsOccupied() bool         { return d.occupied }
func (d *Dock) Occupant() vessel.ShipKey { return d.occupant }
func (d *Dock) ExpectedCargo() int       { return d.expectedCargo }
func (d *Dock) CargoMoved() int          { return d.cargoMoved }
func (d *Dock) DockedAt() int            { return d.dockedAt }
func (d *Dock) CargoDoneAt() int         { return d.cargoDoneAt }
func (d *Dock) IsSearchDone() bool       { return d.searchDone }
func (d *Dock) CredentialFound() bool    { return d.credentialFound }

// CanHost reports whether the dock is free and large enough for the ship
func (d *Dock) CanHost(ship *vessel.Ship) bool {
	return !d.occupied && d.category >= ship.Category()
}

// Occupy links the dock to a ship for the current timestep
func (d *Dock) Occupy(ship *vessel.Ship, timestep int) error {
	if d.occupied {
		return shared.NewDockOccupiedError(d.id, d.occupant.ID)
	}
	if d.category < ship.Category() {
		return shared.NewCategoryMismatchError(d.id, d.category, ship.Category())
	}

	d.occupied = true
	d.occupant = ship.Key()
	d.expectedCargo = ship.CargoCount()
	d.cargoMoved = 0
	d.dockedAt = timestep
	d.cargoDoneAt = 0
	d.searching = false
	d.searchDone = false
	d.credentialFound = false
	d.searchedAt = 0
	return nil
}

// RecordCargoMove counts one moved item against the expected count
func (d *Dock) RecordCargoMove() {
	d.cargoMoved++
}

// MarkCargoDone records the timestep the occupant's last item moved
func (d *Dock) MarkCargoDone(timestep int) {
	d.cargoDoneAt = timestep
}

// IsCargoDone reports whether cargo completion has been recorded
func (d *Dock) IsCargoDone() bool {
	return d.occupied && d.cargoDoneAt > 0
}

// IsDesynchronized reports a dock whose cargo was reported complete while its
// moved counter trails the count expected at docking
func (d *Dock) IsDesynchronized() bool {
	return d.IsCargoDone() && d.cargoMoved < d.expectedCargo
}

// ReadyForSearch reports whether the credential search may start this timestep.
//
// Business Rules:
//   - Cargo must be complete and at least one timestep old
//   - The moved counter must have reached the expected count
//   - A dock is searched once per occupancy
func (d *Dock) ReadyForSearch(timestep int) bool {
	if !d.IsCargoDone() || d.searching || d.searchDone {
		return false
	}
	if timestep < d.cargoDoneAt+1 {
		return false
	}
	return !d.IsDesynchronized()
}

// CredentialLength is the number of timesteps cargo motion took
func (d *Dock) CredentialLength() int {
	return d.cargoDoneAt - d.dockedAt
}

// BeginSearch moves the dock into SEARCHING
func (d *Dock) BeginSearch() error {
	if d.searching || d.searchDone {
		return shared.NewDockError(fmt.Sprintf("dock %d search already started", d.id), d.id)
	}
	d.searching = true
	return nil
}

// CompleteSearch records the search result
func (d *Dock) CompleteSearch(timestep int, found bool) {
	d.searching = false
	d.searchDone = true
	d.credentialFound = found
	d.searchedAt = timestep
}

// IsStalled reports a dock whose search finished without a credential
func (d *Dock) IsStalled() bool {
	return d.occupied && d.searchDone && !d.credentialFound
}

// ReadyForRelease reports whether the grace period after cargo completion has
// elapsed for a dock whose credential was recovered
func (d *Dock) ReadyForRelease(timestep int) bool {
	if !d.occupied || !d.searchDone || !d.credentialFound {
		return false
	}
	return timestep >= d.cargoDoneAt+ReleaseDelay && timestep > d.searchedAt
}

// Release returns the dock to the free pool and resets every counter
func (d *Dock) Release() {
	d.occupied = false
	d.occupant = vessel.ShipKey{ID: -1, Direction: vessel.DirectionNone}
	d.expectedCargo = 0
	d.cargoMoved = 0
	d.dockedAt = 0
	d.cargoDoneAt = 0
	d.searching = false
	d.searchDone = false
	d.credentialFound = false
	d.searchedAt = 0
	d.ResetCranes()
}

// ResetCranes frees every crane for a new timestep
func (d *Dock) ResetCranes() {
	for _, crane := range d.cranes {
		crane.Reset()
	}
}

// UsedCranes counts cranes bound this timestep
func (d *Dock) UsedCranes() int {
	n := 0
	for _, crane := range d.cranes {
		if crane.used {
			n++
		}
	}
	return n
}

// Phase derives the lifecycle phase at the given timestep
func (d *Dock) Phase(timestep int) Phase {
	switch {
	case !d.occupied:
		return PhaseFree
	case d.searching:
		return PhaseSearching
	case d.searchDone && d.credentialFound:
		return PhaseUndockPending
	case d.searchDone:
		return PhaseStalled
	case d.cargoDoneAt > 0:
		return PhaseCargoComplete
	case timestep > d.dockedAt:
		return PhaseCargoInProgress
	default:
		return PhaseOccupied
	}
}

func (d *Dock) String() string {
	return fmt.Sprintf("Dock(%d, cat=%d, cranes=%d)", d.id, d.category, len(d.cranes))
}
