package simulator

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// TraceSink records every event in emission order and optionally prints it
type TraceSink struct {
	mu     sync.Mutex
	events []port.Event
	out    io.Writer
}

// NewTraceSink creates a sink. out may be nil.
func NewTraceSink(out io.Writer) *TraceSink {
	return &TraceSink{out: out}
}

func (s *TraceSink) Emit(ctx context.Context, event port.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.out != nil {
		if _, err := fmt.Fprintln(s.out, event.String()); err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}
	return nil
}

// Events returns a copy of the recorded events
func (s *TraceSink) Events() []port.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]port.Event(nil), s.events...)
}

// OfKind returns the recorded events of one kind
func (s *TraceSink) OfKind(kind port.EventKind) []port.Event {
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

// MemoryAuthStrings is the in-process credential table
type MemoryAuthStrings struct {
	mu      sync.RWMutex
	strings map[int]string
}

func NewMemoryAuthStrings() *MemoryAuthStrings {
	return &MemoryAuthStrings{strings: make(map[int]string)}
}

func (m *MemoryAuthStrings) Put(ctx context.Context, dockID int, credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[dockID] = credential
	return nil
}

// Get returns the last credential recovered for a dock
func (m *MemoryAuthStrings) Get(dockID int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.strings[dockID]
	return s, ok
}

// DockIDs lists the docks with a recovered credential in ascending order
func (m *MemoryAuthStrings) DockIDs() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.strings))
	for id := range m.strings {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TeeAuthStrings writes every credential to each store in order
type TeeAuthStrings []port.AuthStringStore

func (t TeeAuthStrings) Put(ctx context.Context, dockID int, credential string) error {
	for _, store := range t {
		if err := store.Put(ctx, dockID, credential); err != nil {
			return err
		}
	}
	return nil
}
