package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// OracleClient implements port.OracleDialer over one gRPC connection.
// Each worker gets a logical session identified by its worker id.
type OracleClient struct {
	conn    *grpc.ClientConn
	breaker *breaker
}

// NewOracleClient connects to the oracle service and waits until the
// connection is ready or the timeout elapses
func NewOracleClient(ctx context.Context, address string, timeout time.Duration, opts ...grpc.DialOption) (*OracleClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client for %s: %w", address, err)
	}

	if timeout > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := waitReady(waitCtx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to oracle at %s: %w", address, err)
		}
	}

	return &OracleClient{conn: conn}, nil
}

func waitReady(ctx context.Context, conn *grpc.ClientConn) error {
	conn.Connect()
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if !conn.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}

// WithBreaker makes every session fail fast with ErrOracleUnavailable for the
// cooldown once maxFailures consecutive calls hit a transport failure
func (c *OracleClient) WithBreaker(maxFailures int, cooldown time.Duration, clock shared.Clock) *OracleClient {
	c.breaker = newBreaker(maxFailures, cooldown, clock)
	return c
}

// Tripped reports whether the breaker is currently open
func (c *OracleClient) Tripped() bool {
	return c.breaker != nil && c.breaker.isOpen()
}

func (c *OracleClient) invoke(ctx context.Context, method string, req, reply interface{}) error {
	if c.breaker == nil {
		return c.conn.Invoke(ctx, method, req, reply)
	}
	return c.breaker.guard(func() error {
		return c.conn.Invoke(ctx, method, req, reply)
	})
}

// Close closes the gRPC connection
func (c *OracleClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Session implements port.OracleDialer
func (c *OracleClient) Session(ctx context.Context, workerID int) (port.OracleSession, error) {
	return &clientSession{client: c, workerID: int32(workerID)}, nil
}

type clientSession struct {
	client   *OracleClient
	workerID int32
}

func (s *clientSession) SetDock(ctx context.Context, dockID int) error {
	req := &DockRef{WorkerID: s.workerID, DockID: int32(dockID)}
	if err := s.client.invoke(ctx, setDockMethod, req, new(Ack)); err != nil {
		return fmt.Errorf("gRPC SetDock failed: %w", err)
	}
	return nil
}

func (s *clientSession) Guess(ctx context.Context, dockID int, candidate string) (bool, error) {
	req := &GuessRequest{WorkerID: s.workerID, DockID: int32(dockID), Candidate: candidate}
	verdict := new(Verdict)
	if err := s.client.invoke(ctx, guessMethod, req, verdict); err != nil {
		return false, fmt.Errorf("gRPC Guess failed: %w", err)
	}
	return verdict.Correct, nil
}

// Close leaves the shared connection open
func (s *clientSession) Close() error { return nil }
