package vessel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

func TestQueueSet_RoutesByDirectionAndEmergency(t *testing.T) {
	// Arrange
	qs := vessel.NewQueueSet()

	// Act
	_, emergency, _ := qs.Ingest(vessel.ShipRequest{ShipID: 1, Direction: vessel.DirectionInbound, Emergency: true})
	_, regular, _ := qs.Ingest(vessel.ShipRequest{ShipID: 2, Direction: vessel.DirectionInbound})
	_, outbound, _ := qs.Ingest(vessel.ShipRequest{ShipID: 3, Direction: vessel.DirectionOutbound, Emergency: true})
	_, inert, _ := qs.Ingest(vessel.ShipRequest{ShipID: 4, Direction: vessel.DirectionNone})

	// Assert
	assert.Equal(t, vessel.QueueEmergencyInbound, emergency.Kind())
	assert.Equal(t, vessel.QueueRegularInbound, regular.Kind())
	assert.Equal(t, vessel.QueueOutbound, outbound.Kind())
	assert.Equal(t, vessel.QueueRegularInbound, inert.Kind())
	assert.Equal(t, 4, qs.Len())
}

func TestQueueSet_InPriorityOrder(t *testing.T) {
	qs := vessel.NewQueueSet()

	kinds := []vessel.QueueKind{}
	for _, q := range qs.InPriorityOrder() {
		kinds = append(kinds, q.Kind())
	}

	assert.Equal(t, []vessel.QueueKind{
		vessel.QueueEmergencyInbound,
		vessel.QueueRegularInbound,
		vessel.QueueOutbound,
	}, kinds)
}

func TestQueue_UpsertIsIdempotentPerKey(t *testing.T) {
	// Arrange
	q := vessel.NewQueue(vessel.QueueRegularInbound)
	first, created := q.Upsert(inbound(5, 0, 1, 3, 10))
	require.True(t, created)

	// Act
	second, created := q.Upsert(inbound(5, 2, 1, 3, 20, 30))

	// Assert
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 5, second.Cutoff())
	assert.Equal(t, 2, second.CargoCount())
}

func TestQueue_SameIDOtherDirectionIsDistinct(t *testing.T) {
	// Arrange
	qs := vessel.NewQueueSet()

	// Act
	qs.Ingest(vessel.ShipRequest{ShipID: 9, Direction: vessel.DirectionInbound})
	qs.Ingest(vessel.ShipRequest{ShipID: 9, Direction: vessel.DirectionOutbound})

	// Assert
	assert.Equal(t, 2, qs.Len())
	_, ok := qs.Outbound().Find(vessel.ShipKey{ID: 9, Direction: vessel.DirectionOutbound})
	assert.True(t, ok)
}

func TestQueue_SortInboundBySoonestCutoff(t *testing.T) {
	// Arrange
	q := vessel.NewQueue(vessel.QueueRegularInbound)
	q.Upsert(inbound(1, 0, 1, 9))
	q.Upsert(inbound(2, 0, 1, 3))
	q.Upsert(inbound(3, 1, 1, 2))
	q.Upsert(inbound(4, 0, 1, 5))

	// Act
	q.Sort()

	// Assert: ships 2 and 3 tie on cutoff 3 and keep ingestion order
	assert.Equal(t, []int{2, 3, 4, 1}, ids(q.Ships()))
}

func TestQueue_SortOutboundByArrival(t *testing.T) {
	// Arrange
	q := vessel.NewQueue(vessel.QueueOutbound)
	for _, r := range []vessel.ShipRequest{
		{ShipID: 1, Timestep: 4, Direction: vessel.DirectionOutbound, WaitingTime: 0},
		{ShipID: 2, Timestep: 1, Direction: vessel.DirectionOutbound, WaitingTime: 50},
		{ShipID: 3, Timestep: 2, Direction: vessel.DirectionOutbound, WaitingTime: 1},
	} {
		q.Upsert(r)
	}

	// Act
	q.Sort()

	// Assert
	assert.Equal(t, []int{2, 3, 1}, ids(q.Ships()))
}

func TestQueue_Remove(t *testing.T) {
	// Arrange
	q := vessel.NewQueue(vessel.QueueRegularInbound)
	q.Upsert(inbound(1, 0, 1, 1))
	q.Upsert(inbound(2, 0, 1, 1))
	q.Upsert(inbound(3, 0, 1, 1))

	// Act
	removed := q.Remove(vessel.ShipKey{ID: 2, Direction: vessel.DirectionInbound})
	missing := q.Remove(vessel.ShipKey{ID: 2, Direction: vessel.DirectionInbound})

	// Assert
	assert.True(t, removed)
	assert.False(t, missing)
	assert.Equal(t, []int{1, 3}, ids(q.Ships()))
}

func TestQueueSet_FindDockedAndRetire(t *testing.T) {
	// Arrange
	qs := vessel.NewQueueSet()
	ship, _, _ := qs.Ingest(inbound(1, 0, 1, 5, 10))
	require.NoError(t, ship.DockAt(4, 1))
	key := ship.Key()

	// Act & Assert
	found, ok := qs.FindDocked(key, 4)
	require.True(t, ok)
	assert.Same(t, ship, found)

	_, ok = qs.FindDocked(key, 5)
	assert.False(t, ok)

	assert.False(t, qs.Retire(key, 5))
	assert.True(t, qs.Retire(key, 4))
	assert.Equal(t, 0, qs.Len())
}

func TestQueueSet_EmergencyFlagChangeMovesTheShip(t *testing.T) {
	// Arrange
	qs := vessel.NewQueueSet()
	ship, _, _ := qs.Ingest(inbound(1, 0, 1, 5))
	require.NoError(t, ship.DockAt(0, 0))

	// Act
	refreshed, queue, created := qs.Ingest(vessel.ShipRequest{
		ShipID: 1, Timestep: 1, Category: 1, Direction: vessel.DirectionInbound, Emergency: true, Cargo: []int{5},
	})

	// Assert
	assert.False(t, created)
	assert.Same(t, ship, refreshed)
	assert.Equal(t, vessel.QueueEmergencyInbound, queue.Kind())
	assert.Equal(t, 0, qs.RegularInbound().Len())
	assert.Equal(t, 1, qs.EmergencyInbound().Len())
	assert.True(t, refreshed.IsEmergency())
	assert.True(t, refreshed.IsDockedAt(0), "dock linkage survives the move")
	assert.Equal(t, 1, qs.Len())
}

func TestQueueSet_Pending(t *testing.T) {
	// Arrange
	qs := vessel.NewQueueSet()
	qs.Ingest(inbound(1, 0, 1, 2))
	qs.Ingest(inbound(2, 0, 1, 10))
	qs.Ingest(vessel.ShipRequest{ShipID: 3, Direction: vessel.DirectionNone})
	docked, _, _ := qs.Ingest(vessel.ShipRequest{ShipID: 4, Direction: vessel.DirectionOutbound})
	require.NoError(t, docked.DockAt(0, 0))

	// Act & Assert
	assert.Equal(t, 2, qs.Pending(2))
	assert.Equal(t, 1, qs.Pending(3))
}

func ids(ships []*vessel.Ship) []int {
	out := make([]int, len(ships))
	for i, s := range ships {
		out[i] = s.ID()
	}
	return out
}
