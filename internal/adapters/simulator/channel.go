package simulator

import (
	"context"
	"errors"
	"sync"

	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// ErrSimulatorClosed is returned when batches are sent after Finish
var ErrSimulatorClosed = errors.New("simulator already finished")

// ChannelSimulator is an in-process simulator boundary. A producer goroutine
// sends batches; the controller receives them with NextBatch.
type ChannelSimulator struct {
	batches chan *vessel.Batch

	mu       sync.Mutex
	finished bool
}

// NewChannelSimulator creates a simulator whose queue holds buffer batches
func NewChannelSimulator(buffer int) *ChannelSimulator {
	return &ChannelSimulator{batches: make(chan *vessel.Batch, buffer)}
}

// Send queues a batch, blocking while the buffer is full
func (s *ChannelSimulator) Send(ctx context.Context, batch *vessel.Batch) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrSimulatorClosed
	}
	s.mu.Unlock()

	select {
	case s.batches <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finish queues the terminating sentinel. Later calls are no-ops.
func (s *ChannelSimulator) Finish(ctx context.Context) error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return nil
	}
	s.finished = true
	s.mu.Unlock()

	select {
	case s.batches <- &vessel.Batch{Finished: true}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextBatch blocks until a batch arrives or the context ends
func (s *ChannelSimulator) NextBatch(ctx context.Context) (*vessel.Batch, error) {
	select {
	case batch := <-s.batches:
		return batch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
