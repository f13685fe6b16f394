package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	oraclegrpc "github.com/andrescamacho/portscheduler-go/internal/adapters/grpc"
	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

// startOracle serves a scripted oracle over an in-memory listener
func startOracle(t *testing.T, oracle *helpers.ScriptedOracle) *oraclegrpc.OracleClient {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := oraclegrpc.NewOracleServerWithListener(oraclegrpc.NewOracleService(oracle), listener)
	go func() { _ = server.Serve() }()
	t.Cleanup(func() { _ = server.Stop() })

	client, err := oraclegrpc.NewOracleClient(context.Background(), "passthrough:///bufnet", 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestOracleClient_GuessRoundTrip(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(4, "5.9")
	client := startOracle(t, oracle)
	ctx := context.Background()

	session, err := client.Session(ctx, 1)
	require.NoError(t, err)

	// Act
	require.NoError(t, session.SetDock(ctx, 4))
	miss, err := session.Guess(ctx, 4, "555")
	require.NoError(t, err)
	hit, err := session.Guess(ctx, 4, "5.9")
	require.NoError(t, err)

	// Assert
	assert.False(t, miss)
	assert.True(t, hit)
	assert.Equal(t, []string{"555", "5.9"}, oracle.Queries(1))
	assert.Equal(t, []int{4}, oracle.SetDocks(1))
}

func TestOracleClient_ZeroValuesSurviveTheWire(t *testing.T) {
	// Arrange: worker 0 and dock 0 are encoded as absent fields
	oracle := helpers.NewScriptedOracle().WithSecret(0, "5")
	client := startOracle(t, oracle)
	ctx := context.Background()
	session, err := client.Session(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, session.SetDock(ctx, 0))

	// Act
	hit, err := session.Guess(ctx, 0, "5")

	// Assert
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{0}, oracle.SetDocks(0))
}

func TestOracleService_GuessBeforeSetDock(t *testing.T) {
	// Arrange
	client := startOracle(t, helpers.NewScriptedOracle())
	session, err := client.Session(context.Background(), 3)
	require.NoError(t, err)

	// Act
	_, err = session.Guess(context.Background(), 0, "5")

	// Assert
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
}

func TestOracleService_SessionFailure(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle()
	oracle.SessionErr = assert.AnError
	client := startOracle(t, oracle)
	session, err := client.Session(context.Background(), 0)
	require.NoError(t, err)

	// Act
	err = session.SetDock(context.Background(), 1)

	// Assert
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Unavailable, st.Code())
}

func TestOracleClient_BreakerFailsFastAfterRepeatedOutages(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle()
	oracle.SessionErr = assert.AnError
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	client := startOracle(t, oracle).WithBreaker(2, time.Minute, clock)
	ctx := context.Background()
	session, err := client.Session(ctx, 0)
	require.NoError(t, err)

	// Act
	first := session.SetDock(ctx, 1)
	second := session.SetDock(ctx, 1)
	third := session.SetDock(ctx, 1)

	// Assert
	for _, err := range []error{first, second} {
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.Unavailable, st.Code())
	}
	assert.ErrorIs(t, third, oraclegrpc.ErrOracleUnavailable)
	assert.True(t, client.Tripped())
}

func TestOracleClient_BreakerClosesAfterCooldown(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(1, "5")
	oracle.SessionErr = assert.AnError
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	client := startOracle(t, oracle).WithBreaker(1, time.Minute, clock)
	ctx := context.Background()
	session, err := client.Session(ctx, 0)
	require.NoError(t, err)
	require.Error(t, session.SetDock(ctx, 1))
	require.True(t, client.Tripped())

	// Act
	oracle.SessionErr = nil
	clock.Advance(time.Minute)
	err = session.SetDock(ctx, 1)

	// Assert
	require.NoError(t, err)
	assert.False(t, client.Tripped())
	hit, err := session.Guess(ctx, 1, "5")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestOracleClient_VerdictErrorsDoNotTripTheBreaker(t *testing.T) {
	// Arrange
	client := startOracle(t, helpers.NewScriptedOracle()).WithBreaker(1, time.Minute, nil)
	session, err := client.Session(context.Background(), 3)
	require.NoError(t, err)

	// Act: guessing before SetDock is a precondition error, not an outage
	_, err = session.Guess(context.Background(), 0, "5")

	// Assert
	require.Error(t, err)
	assert.False(t, client.Tripped())
}

func TestOracleClient_DrivesAFullSearch(t *testing.T) {
	// Arrange
	oracle := helpers.NewScriptedOracle().WithSecret(2, "8.6")
	client := startOracle(t, oracle)
	store := helpers.NewRecordingStore()
	sink := helpers.NewRecordingSink()
	orchestrator, err := search.NewOrchestrator(client, store, sink, 4)
	require.NoError(t, err)
	key := vessel.ShipKey{ID: 9, Direction: vessel.DirectionOutbound}

	// Act
	outcome, err := orchestrator.Search(context.Background(), search.Request{DockID: 2, Ship: key, Length: 3, Timestep: 6})

	// Assert
	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "8.6", outcome.Credential)
	assert.Equal(t, 2, outcome.WinnerWorker)
	assert.Equal(t, []port.Event{port.NewUndockEvent(6, key, 2)}, sink.OfKind(port.EventUndock))
}

func TestNewOracleClient_TimesOutWithoutServer(t *testing.T) {
	listener := bufconn.Listen(1024)
	require.NoError(t, listener.Close())

	_, err := oraclegrpc.NewOracleClient(context.Background(), "passthrough:///bufnet", 200*time.Millisecond,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
	)
	assert.Error(t, err)
}
