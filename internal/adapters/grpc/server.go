package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// OracleService serves the oracle protocol on top of any port.OracleDialer.
// Every worker id maps to one backing session, opened on its first SetDock.
type OracleService struct {
	dialer port.OracleDialer

	mu       sync.Mutex
	sessions map[int32]port.OracleSession
}

func NewOracleService(dialer port.OracleDialer) *OracleService {
	return &OracleService{
		dialer:   dialer,
		sessions: make(map[int32]port.OracleSession),
	}
}

func (s *OracleService) SetDock(ctx context.Context, req *DockRef) (*Ack, error) {
	s.mu.Lock()
	session, ok := s.sessions[req.WorkerID]
	if !ok {
		var err error
		session, err = s.dialer.Session(ctx, int(req.WorkerID))
		if err != nil {
			s.mu.Unlock()
			return nil, status.Errorf(codes.Unavailable, "failed to open session for worker %d: %v", req.WorkerID, err)
		}
		s.sessions[req.WorkerID] = session
	}
	s.mu.Unlock()

	if err := session.SetDock(ctx, int(req.DockID)); err != nil {
		return nil, status.Errorf(codes.Internal, "set dock %d: %v", req.DockID, err)
	}
	return &Ack{}, nil
}

func (s *OracleService) Guess(ctx context.Context, req *GuessRequest) (*Verdict, error) {
	s.mu.Lock()
	session, ok := s.sessions[req.WorkerID]
	s.mu.Unlock()
	if !ok {
		return nil, status.Errorf(codes.FailedPrecondition, "worker %d has not set a dock", req.WorkerID)
	}

	correct, err := session.Guess(ctx, int(req.DockID), req.Candidate)
	if err != nil {
		return nil, status.Errorf(codes.FailedPrecondition, "guess: %v", err)
	}
	return &Verdict{Correct: correct}, nil
}

// Close closes every backing session
func (s *OracleService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for id, session := range s.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.sessions, id)
	}
	return firstErr
}

// OracleServer hosts an OracleService on a listener
type OracleServer struct {
	service  *OracleService
	server   *grpc.Server
	listener net.Listener
}

// NewOracleServer listens on network/address, e.g. "tcp", ":50061" or "unix", "/tmp/oracle.sock"
func NewOracleServer(service *OracleService, network, address string) (*OracleServer, error) {
	listener, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s %s: %w", network, address, err)
	}
	return NewOracleServerWithListener(service, listener), nil
}

// NewOracleServerWithListener hosts the service on an existing listener
func NewOracleServerWithListener(service *OracleService, listener net.Listener) *OracleServer {
	server := grpc.NewServer()
	RegisterOracleHandler(server, service)
	return &OracleServer{service: service, server: server, listener: listener}
}

func (s *OracleServer) Addr() net.Addr { return s.listener.Addr() }

// Serve blocks until Stop is called or the listener fails
func (s *OracleServer) Serve() error {
	if err := s.server.Serve(s.listener); err != nil {
		return fmt.Errorf("gRPC server error: %w", err)
	}
	return nil
}

// Stop drains in-flight calls and closes the sessions
func (s *OracleServer) Stop() error {
	s.server.GracefulStop()
	return s.service.Close()
}
