package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// RecordingSink captures emitted events in order. It is safe for concurrent
// use by search workers. FailOn makes Emit return an error for one kind.
type RecordingSink struct {
	mu     sync.Mutex
	events []port.Event

	FailOn  port.EventKind
	FailErr error
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Emit(ctx context.Context, event port.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailErr != nil && event.Kind == s.FailOn {
		return s.FailErr
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of every captured event
func (s *RecordingSink) Events() []port.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]port.Event(nil), s.events...)
}

// OfKind returns the captured events of one kind
func (s *RecordingSink) OfKind(kind port.EventKind) []port.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []port.Event
	for _, e := range s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// AtTimestep returns the captured events of one timestep
func (s *RecordingSink) AtTimestep(timestep int) []port.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []port.Event
	for _, e := range s.events {
		if e.Timestep == timestep {
			out = append(out, e)
		}
	}
	return out
}

// Kinds lists the kinds of the captured events in order
func (s *RecordingSink) Kinds() []port.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]port.EventKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

// Reset drops every captured event
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// RecordingStore captures credentials written by searches
type RecordingStore struct {
	mu          sync.Mutex
	credentials map[int]string
	puts        int

	FailErr error
}

func NewRecordingStore() *RecordingStore {
	return &RecordingStore{credentials: make(map[int]string)}
}

func (s *RecordingStore) Put(ctx context.Context, dockID int, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailErr != nil {
		return s.FailErr
	}
	s.credentials[dockID] = credential
	s.puts++
	return nil
}

func (s *RecordingStore) Get(dockID int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[dockID]
	return c, ok
}

// Puts counts every successful write
func (s *RecordingStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}
