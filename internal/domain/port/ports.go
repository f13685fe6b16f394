package port

import (
	"context"

	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// Simulator delivers the request batch of each timestep. NextBatch blocks until
// the next batch or the terminating sentinel arrives.
type Simulator interface {
	NextBatch(ctx context.Context) (*vessel.Batch, error)
}

// EventSink receives lifecycle notifications. No acknowledgement is awaited;
// an error means the boundary itself failed.
type EventSink interface {
	Emit(ctx context.Context, event Event) error
}

// OracleSession is one worker's request/response channel to the credential
// oracle. SetDock is called once before the first guess.
type OracleSession interface {
	SetDock(ctx context.Context, dockID int) error
	Guess(ctx context.Context, dockID int, candidate string) (bool, error)
	Close() error
}

// OracleDialer opens one session per search worker
type OracleDialer interface {
	Session(ctx context.Context, workerID int) (OracleSession, error)
}

// AuthStringStore is the table of recovered credentials, written once per
// successful search
type AuthStringStore interface {
	Put(ctx context.Context, dockID int, credential string) error
}
