package port_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

func newShip(id, category int, cargo ...int) *vessel.Ship {
	return vessel.NewShip(vessel.ShipRequest{
		ShipID:      id,
		Category:    category,
		Direction:   vessel.DirectionInbound,
		WaitingTime: 100,
		Cargo:       cargo,
	})
}

func TestNewDock_SortsCranesByDescendingCapacity(t *testing.T) {
	// Act
	dock, err := port.NewDock(0, 3, []int{10, 30, 20, 30})

	// Assert
	require.NoError(t, err)
	var caps, craneIDs []int
	for _, c := range dock.Cranes() {
		caps = append(caps, c.Capacity())
		craneIDs = append(craneIDs, c.ID())
	}
	assert.Equal(t, []int{30, 30, 20, 10}, caps)
	assert.Equal(t, []int{1, 3, 2, 0}, craneIDs, "crane ids stay their configured positions")
	assert.Equal(t, port.PhaseFree, dock.Phase(0))
	assert.Equal(t, -1, dock.Occupant().ID)
}

func TestNewDock_Validation(t *testing.T) {
	tests := []struct {
		name     string
		category int
		cranes   []int
	}{
		{"zero category", 0, []int{10}},
		{"no cranes", 1, nil},
		{"zero capacity crane", 1, []int{10, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := port.NewDock(0, tt.category, tt.cranes)

			var validation *shared.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
}

func TestDock_Occupy(t *testing.T) {
	// Arrange
	dock, _ := port.NewDock(2, 3, []int{30})
	ship := newShip(1, 2, 10, 20)

	// Act
	err := dock.Occupy(ship, 4)

	// Assert
	require.NoError(t, err)
	assert.True(t, dock.IsOccupied())
	assert.Equal(t, ship.Key(), dock.Occupant())
	assert.Equal(t, 2, dock.ExpectedCargo())
	assert.Equal(t, 4, dock.DockedAt())
	assert.Equal(t, port.PhaseOccupied, dock.Phase(4))
	assert.Equal(t, port.PhaseCargoInProgress, dock.Phase(5))
}

func TestDock_OccupyRejectsSecondShip(t *testing.T) {
	// Arrange
	dock, _ := port.NewDock(2, 3, []int{30})
	require.NoError(t, dock.Occupy(newShip(1, 1), 0))

	// Act
	err := dock.Occupy(newShip(2, 1), 0)

	// Assert
	var occupied *shared.DockOccupiedError
	require.True(t, errors.As(err, &occupied))
	assert.Equal(t, 1, occupied.OccupantID)
	assert.Equal(t, 1, dock.Occupant().ID)
}

func TestDock_OccupyRejectsLargerShip(t *testing.T) {
	// Arrange
	dock, _ := port.NewDock(0, 2, []int{30})

	// Act
	err := dock.Occupy(newShip(1, 3), 0)

	// Assert
	var mismatch *shared.CategoryMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.False(t, dock.IsOccupied())
	assert.False(t, dock.CanHost(newShip(1, 3)))
	assert.True(t, dock.CanHost(newShip(1, 2)))
}

func TestDock_SearchAndReleaseTiming(t *testing.T) {
	// Arrange: docked at 1, cargo done at 3, so the credential has length 2
	dock, _ := port.NewDock(0, 3, []int{30})
	require.NoError(t, dock.Occupy(newShip(1, 1, 5, 5), 1))
	dock.RecordCargoMove()
	dock.RecordCargoMove()
	dock.MarkCargoDone(3)

	// Assert: search opens one timestep after cargo completion
	assert.Equal(t, port.PhaseCargoComplete, dock.Phase(3))
	assert.False(t, dock.ReadyForSearch(3))
	assert.True(t, dock.ReadyForSearch(4))
	assert.Equal(t, 2, dock.CredentialLength())

	// Act: search at 4
	require.NoError(t, dock.BeginSearch())
	assert.Equal(t, port.PhaseSearching, dock.Phase(4))
	assert.False(t, dock.ReadyForSearch(4))
	assert.Error(t, dock.BeginSearch())
	dock.CompleteSearch(4, true)

	// Assert: released two timesteps after cargo completion, never earlier
	assert.Equal(t, port.PhaseUndockPending, dock.Phase(4))
	assert.False(t, dock.ReadyForRelease(4))
	assert.True(t, dock.ReadyForRelease(5))
	assert.False(t, dock.ReadyForSearch(5), "a dock is searched once per occupancy")
}

func TestDock_DesynchronizedDockIsHeldBack(t *testing.T) {
	// Arrange
	dock, _ := port.NewDock(0, 3, []int{30})
	require.NoError(t, dock.Occupy(newShip(1, 1, 5, 5, 5), 0))
	dock.RecordCargoMove()
	dock.MarkCargoDone(2)

	// Assert
	assert.True(t, dock.IsDesynchronized())
	assert.False(t, dock.ReadyForSearch(3))
	assert.False(t, dock.ReadyForSearch(10))

	// Act: the counter catches up
	dock.RecordCargoMove()
	dock.RecordCargoMove()

	// Assert
	assert.False(t, dock.IsDesynchronized())
	assert.True(t, dock.ReadyForSearch(10))
}

func TestDock_ExhaustedSearchStalls(t *testing.T) {
	// Arrange
	dock, _ := port.NewDock(0, 3, []int{30})
	require.NoError(t, dock.Occupy(newShip(1, 1, 5), 0))
	dock.RecordCargoMove()
	dock.MarkCargoDone(1)
	require.NoError(t, dock.BeginSearch())

	// Act
	dock.CompleteSearch(2, false)

	// Assert
	assert.True(t, dock.IsStalled())
	assert.Equal(t, port.PhaseStalled, dock.Phase(3))
	assert.False(t, dock.ReadyForRelease(100))
}

func TestDock_ReleaseResetsEverything(t *testing.T) {
	// Arrange
	dock, _ := port.NewDock(0, 3, []int{30, 20})
	require.NoError(t, dock.Occupy(newShip(1, 1, 5), 0))
	require.NoError(t, dock.Cranes()[0].MarkUsed())
	dock.RecordCargoMove()
	dock.MarkCargoDone(1)
	require.NoError(t, dock.BeginSearch())
	dock.CompleteSearch(2, true)

	// Act
	dock.Release()

	// Assert
	assert.False(t, dock.IsOccupied())
	assert.Equal(t, vessel.ShipKey{ID: -1, Direction: vessel.DirectionNone}, dock.Occupant())
	assert.Equal(t, 0, dock.CargoMoved())
	assert.Equal(t, 0, dock.ExpectedCargo())
	assert.Equal(t, 0, dock.CargoDoneAt())
	assert.False(t, dock.IsSearchDone())
	assert.Equal(t, 0, dock.UsedCranes())
	assert.Equal(t, port.PhaseFree, dock.Phase(3))
}

func TestCrane_OneMovePerTimestep(t *testing.T) {
	// Arrange
	crane, err := port.NewCrane(0, 20)
	require.NoError(t, err)

	// Act & Assert
	assert.True(t, crane.CanLift(20))
	assert.False(t, crane.CanLift(21))
	require.NoError(t, crane.MarkUsed())
	assert.False(t, crane.CanLift(5))
	assert.Error(t, crane.MarkUsed())

	crane.Reset()
	assert.True(t, crane.CanLift(5))
}
