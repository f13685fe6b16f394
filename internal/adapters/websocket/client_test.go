package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/websocket"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// fakeSimulator accepts one connection, sends its script and records every
// frame the scheduler writes
type fakeSimulator struct {
	script   []string
	received chan map[string]any
}

func (f *fakeSimulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := gorilla.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	go func() {
		for _, frame := range f.script {
			if err := conn.WriteMessage(gorilla.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			close(f.received)
			return
		}
		var frame map[string]any
		if json.Unmarshal(msg, &frame) == nil {
			f.received <- frame
		}
	}
}

func startSimulator(t *testing.T, script ...string) (*fakeSimulator, string) {
	t.Helper()
	sim := &fakeSimulator{script: script, received: make(chan map[string]any, 64)}
	server := httptest.NewServer(sim)
	t.Cleanup(server.Close)
	return sim, "ws" + strings.TrimPrefix(server.URL, "http")
}

func next(t *testing.T, sim *fakeSimulator) map[string]any {
	t.Helper()
	select {
	case frame := <-sim.received:
		return frame
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func TestSimulatorClient_Session(t *testing.T) {
	// Arrange
	sim, url := startSimulator(t,
		`{"type":"timestep","timestep":3,"requests":[{"ship_id":8,"timestep":3,"category":2,"direction":-1,"emergency":false,"waiting_time":0,"cargo":[4,9]}]}`,
		`{"type":"finished"}`,
	)
	ctx := context.Background()

	// Act
	client, err := websocket.Dial(ctx, url, 5*time.Second, websocket.HelloFrame{WorkerCount: 3, Docks: 2})
	require.NoError(t, err)
	defer client.Close()

	batch, err := client.NextBatch(ctx)
	require.NoError(t, err)
	done, err := client.NextBatch(ctx)
	require.NoError(t, err)

	ship := vessel.ShipKey{ID: 8, Direction: vessel.DirectionOutbound}
	require.NoError(t, client.Emit(ctx, port.NewMoveCargoEvent(4, ship, 1, 1, 0)))
	require.NoError(t, client.Put(ctx, 1, "5.6"))
	require.NoError(t, client.Emit(ctx, port.NewEndTimestepEvent(4)))

	// Assert
	assert.Equal(t, 3, batch.Timestep)
	require.Len(t, batch.Requests, 1)
	assert.Equal(t, vessel.ShipRequest{ShipID: 8, Timestep: 3, Category: 2, Direction: vessel.DirectionOutbound, Cargo: []int{4, 9}}, batch.Requests[0])
	assert.True(t, done.Finished)

	hello := next(t, sim)
	assert.Equal(t, "hello", hello["type"])
	assert.Equal(t, float64(3), hello["worker_count"])

	move := next(t, sim)
	assert.Equal(t, "move_cargo", move["type"])
	assert.Equal(t, float64(-1), move["direction"])
	assert.Equal(t, float64(1), move["cargo_index"])

	auth := next(t, sim)
	assert.Equal(t, map[string]any{"type": "auth_string", "dock_id": float64(1), "credential": "5.6"}, auth)

	end := next(t, sim)
	assert.Equal(t, map[string]any{"type": "end_timestep", "timestep": float64(4)}, end)
}

func TestSimulatorClient_CancelUnblocksRead(t *testing.T) {
	// Arrange
	_, url := startSimulator(t)
	client, err := websocket.Dial(context.Background(), url, 5*time.Second, websocket.HelloFrame{WorkerCount: 2, Docks: 1})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Act
	_, err = client.NextBatch(ctx)

	// Assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDial_Unreachable(t *testing.T) {
	_, err := websocket.Dial(context.Background(), "ws://127.0.0.1:1/v1/port", time.Second, websocket.HelloFrame{})
	assert.ErrorContains(t, err, "failed to connect to simulator")
}

func TestDecodeBatch_RejectsUnknownFrames(t *testing.T) {
	_, err := websocket.DecodeBatch([]byte(`{"type":"dock"}`))
	assert.ErrorContains(t, err, "unexpected frame type")

	_, err = websocket.DecodeBatch([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewEventFrame_OmitsFieldsOutsideTheKind(t *testing.T) {
	ship := vessel.ShipKey{ID: 2, Direction: vessel.DirectionInbound}

	dock, err := json.Marshal(websocket.NewEventFrame(port.NewDockEvent(1, ship, 0)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"dock","timestep":1,"ship_id":2,"direction":1,"dock_id":0}`, string(dock))

	end, err := json.Marshal(websocket.NewEventFrame(port.NewEndTimestepEvent(1)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"end_timestep","timestep":1}`, string(end))
}
