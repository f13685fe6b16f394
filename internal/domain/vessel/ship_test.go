package vessel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

func inbound(id, timestep, category, waiting int, cargo ...int) vessel.ShipRequest {
	return vessel.ShipRequest{
		ShipID:      id,
		Timestep:    timestep,
		Category:    category,
		Direction:   vessel.DirectionInbound,
		WaitingTime: waiting,
		Cargo:       cargo,
	}
}

func TestNewShip_DerivesCutoffAndSortsCargo(t *testing.T) {
	// Arrange
	req := inbound(7, 3, 2, 4, 15, 25, 5)

	// Act
	ship := vessel.NewShip(req)

	// Assert
	assert.Equal(t, 7, ship.ID())
	assert.Equal(t, 7, ship.Cutoff())
	assert.Equal(t, -1, ship.DockID())
	assert.False(t, ship.IsDocked())
	require.Len(t, ship.Cargo(), 3)
	assert.Equal(t, []int{25, 15, 5}, weights(ship.Cargo()))
	assert.Equal(t, []int{1, 0, 2}, originalIndexes(ship.Cargo()))
}

func TestNewCargoManifest_EqualWeightsKeepRequestOrder(t *testing.T) {
	// Act
	items := vessel.NewCargoManifest([]int{10, 30, 10, 30})

	// Assert
	assert.Equal(t, []int{30, 30, 10, 10}, weights(items))
	assert.Equal(t, []int{1, 3, 0, 2}, originalIndexes(items))
}

func TestShip_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		req      vessel.ShipRequest
		timestep int
		expired  bool
	}{
		{"regular inbound at cutoff", inbound(1, 0, 1, 3), 3, false},
		{"regular inbound past cutoff", inbound(1, 0, 1, 3), 4, true},
		{"emergency inbound past cutoff", vessel.ShipRequest{ShipID: 1, Direction: vessel.DirectionInbound, Emergency: true, WaitingTime: 3}, 10, false},
		{"outbound past cutoff", vessel.ShipRequest{ShipID: 1, Direction: vessel.DirectionOutbound, WaitingTime: 3}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ship := vessel.NewShip(tt.req)
			assert.Equal(t, tt.expired, ship.IsExpired(tt.timestep))
		})
	}
}

func TestShip_IsDockable(t *testing.T) {
	// Arrange
	none := vessel.NewShip(vessel.ShipRequest{ShipID: 1, Direction: vessel.DirectionNone})
	docked := vessel.NewShip(inbound(2, 0, 1, 10))
	require.NoError(t, docked.DockAt(0, 1))
	expired := vessel.NewShip(inbound(3, 0, 1, 1))
	fresh := vessel.NewShip(inbound(4, 0, 1, 10))

	// Assert
	assert.False(t, none.IsDockable(0), "ships without direction are inert")
	assert.False(t, docked.IsDockable(1))
	assert.False(t, expired.IsDockable(2))
	assert.True(t, fresh.IsDockable(2))
}

func TestShip_DockAt_RejectsSecondDock(t *testing.T) {
	// Arrange
	ship := vessel.NewShip(inbound(1, 0, 1, 10))
	require.NoError(t, ship.DockAt(3, 1))

	// Act
	err := ship.DockAt(4, 2)

	// Assert
	require.Error(t, err)
	var docked *shared.ShipAlreadyDockedError
	require.True(t, errors.As(err, &docked))
	assert.Equal(t, 3, docked.DockID)
	assert.True(t, ship.IsDockedAt(3))
	assert.False(t, ship.IsDockedAt(4))
	assert.Equal(t, 1, ship.DockedAt())
}

func TestShip_NextCargoFor_HeaviestThatFits(t *testing.T) {
	// Arrange
	ship := vessel.NewShip(inbound(1, 0, 1, 10, 25, 15, 5))

	// Act & Assert
	assert.Equal(t, 25, ship.NextCargoFor(30).Weight())
	assert.Equal(t, 15, ship.NextCargoFor(20).Weight())
	assert.Equal(t, 5, ship.NextCargoFor(10).Weight())
	assert.Nil(t, ship.NextCargoFor(4))
}

func TestShip_MoveCargo(t *testing.T) {
	// Arrange
	ship := vessel.NewShip(inbound(1, 0, 1, 10, 25, 15))
	heavy := ship.NextCargoFor(30)

	// Act
	require.NoError(t, ship.MoveCargo(heavy))
	err := ship.MoveCargo(heavy)

	// Assert
	assert.Error(t, err, "an item is moved at most once")
	assert.Equal(t, 1, ship.CargoMoved())
	assert.False(t, ship.AllCargoMoved())
	assert.Equal(t, 15, ship.NextCargoFor(30).Weight())

	require.NoError(t, ship.MoveCargo(ship.NextCargoFor(30)))
	assert.True(t, ship.AllCargoMoved())
}

func TestShip_Refresh_ReplacesCargoAndKeepsDockLinkage(t *testing.T) {
	// Arrange
	ship := vessel.NewShip(inbound(1, 0, 2, 5, 20, 10))
	require.NoError(t, ship.DockAt(2, 1))
	require.NoError(t, ship.MoveCargo(ship.NextCargoFor(20)))

	// Act
	ship.Refresh(inbound(1, 4, 3, 6, 8))

	// Assert
	assert.Equal(t, 4, ship.Arrival())
	assert.Equal(t, 3, ship.Category())
	assert.Equal(t, 10, ship.Cutoff())
	assert.Equal(t, 0, ship.CargoMoved())
	assert.Equal(t, []int{8}, weights(ship.Cargo()))
	assert.True(t, ship.IsDockedAt(2))
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want vessel.Direction
	}{
		{"inbound", vessel.DirectionInbound},
		{"+1", vessel.DirectionInbound},
		{"1", vessel.DirectionInbound},
		{"outbound", vessel.DirectionOutbound},
		{"-1", vessel.DirectionOutbound},
		{"none", vessel.DirectionNone},
		{"", vessel.DirectionNone},
	}
	for _, tt := range tests {
		got, err := vessel.ParseDirection(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := vessel.ParseDirection("sideways")
	assert.Error(t, err)
}

func weights(items []*vessel.CargoItem) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.Weight()
	}
	return out
}

func originalIndexes(items []*vessel.CargoItem) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.OriginalIndex()
	}
	return out
}
