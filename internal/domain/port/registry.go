package port

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// Registry holds the fixed set of docks in ascending-category order.
// Ties keep their configured order, so the first dock offered to a ship is
// always the tightest fit with the lowest id.
type Registry struct {
	docks []*Dock
	byID  map[int]*Dock
}

// NewRegistry builds the registry. Dock ids must be unique.
func NewRegistry(docks []*Dock) (*Registry, error) {
	if len(docks) == 0 {
		return nil, shared.NewValidationError("docks", "at least one dock is required")
	}

	byID := make(map[int]*Dock, len(docks))
	ordered := make([]*Dock, 0, len(docks))
	for _, dock := range docks {
		if _, dup := byID[dock.id]; dup {
			return nil, shared.NewValidationError("docks", fmt.Sprintf("duplicate dock id %d", dock.id))
		}
		byID[dock.id] = dock
		ordered = append(ordered, dock)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].category < ordered[j].category
	})

	return &Registry{docks: ordered, byID: byID}, nil
}

// DockSpec describes one dock of a port layout
type DockSpec struct {
	Category int
	Cranes   []int
}

// NewRegistryFromSpecs creates docks whose ids are their positions in specs
func NewRegistryFromSpecs(specs []DockSpec) (*Registry, error) {
	docks := make([]*Dock, 0, len(specs))
	for i, spec := range specs {
		dock, err := NewDock(i, spec.Category, spec.Cranes)
		if err != nil {
			return nil, err
		}
		docks = append(docks, dock)
	}
	return NewRegistry(docks)
}

// Docks returns every dock in ascending-category order
func (r *Registry) Docks() []*Dock { return r.docks }

func (r *Registry) Len() int { return len(r.docks) }

// Dock looks a dock up by id
func (r *Registry) Dock(id int) (*Dock, error) {
	dock, ok := r.byID[id]
	if !ok {
		return nil, shared.NewDockNotFoundError(id)
	}
	return dock, nil
}

// Occupied returns the occupied docks in registry order
func (r *Registry) Occupied() []*Dock {
	var out []*Dock
	for _, dock := range r.docks {
		if dock.occupied {
			out = append(out, dock)
		}
	}
	return out
}

// Stalled returns the docks whose search finished without a credential
func (r *Registry) Stalled() []*Dock {
	var out []*Dock
	for _, dock := range r.docks {
		if dock.IsStalled() {
			out = append(out, dock)
		}
	}
	return out
}

// FirstFit returns the first free dock, in ascending-category order, able to
// host a ship of the given category
func (r *Registry) FirstFit(category int) *Dock {
	for _, dock := range r.docks {
		if !dock.occupied && dock.category >= category {
			return dock
		}
	}
	return nil
}

// Release is one dock freed at the start of a timestep, together with the ship
// that left it
type Release struct {
	Dock     *Dock
	Occupant vessel.ShipKey
}

// ReleaseReady frees every dock whose release condition holds at the timestep.
// Occupants are captured before the dock is reset.
func (r *Registry) ReleaseReady(timestep int) []Release {
	var released []Release
	for _, dock := range r.docks {
		if !dock.ReadyForRelease(timestep) {
			continue
		}
		occupant := dock.occupant
		dock.Release()
		released = append(released, Release{
			Dock:     dock,
			Occupant: occupant,
		})
	}
	return released
}

// ResetCranes frees every crane of every dock
func (r *Registry) ResetCranes() {
	for _, dock := range r.docks {
		dock.ResetCranes()
	}
}

// CheckInvariants verifies the structural invariants of the registry
func (r *Registry) CheckInvariants() error {
	for i, dock := range r.docks {
		if i > 0 && r.docks[i-1].category > dock.category {
			return shared.NewDockError(fmt.Sprintf("dock %d breaks ascending category order", dock.id), dock.id)
		}
		for j := 1; j < len(dock.cranes); j++ {
			if dock.cranes[j-1].capacity < dock.cranes[j].capacity {
				return shared.NewDockError(fmt.Sprintf("dock %d cranes are not in descending capacity order", dock.id), dock.id)
			}
		}
		if dock.UsedCranes() > len(dock.cranes) {
			return shared.NewDockError(fmt.Sprintf("dock %d has more used cranes than cranes", dock.id), dock.id)
		}
		if !dock.occupied && (dock.cargoMoved != 0 || dock.cargoDoneAt != 0 || dock.searchDone) {
			return shared.NewDockError(fmt.Sprintf("free dock %d carries occupancy counters", dock.id), dock.id)
		}
	}
	return nil
}
