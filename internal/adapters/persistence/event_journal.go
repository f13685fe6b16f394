package persistence

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// JournalSink records every event of a run before forwarding it to the next
// sink. A journal write failure is logged and never blocks the event.
type JournalSink struct {
	next  port.EventSink
	db    *gorm.DB
	runID string
	clock shared.Clock

	mu       sync.Mutex
	sequence int
}

// NewJournalSink wraps next. If clock is nil, uses RealClock.
func NewJournalSink(next port.EventSink, db *gorm.DB, runID string, clock shared.Clock) *JournalSink {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &JournalSink{next: next, db: db, runID: runID, clock: clock}
}

func (j *JournalSink) Emit(ctx context.Context, event port.Event) error {
	j.mu.Lock()
	j.sequence++
	model := &EventModel{
		RunID:      j.runID,
		Sequence:   j.sequence,
		Timestep:   event.Timestep,
		Kind:       string(event.Kind),
		ShipID:     event.ShipID,
		Direction:  int(event.Direction),
		DockID:     event.DockID,
		CargoIndex: event.CargoIndex,
		CraneID:    event.CraneID,
		RecordedAt: j.clock.Now(),
	}
	err := j.db.WithContext(ctx).Create(model).Error
	j.mu.Unlock()

	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, fmt.Sprintf("Failed to journal %s event: %v", event.Kind, err), map[string]interface{}{
			"action":   "journal_event",
			"run_id":   j.runID,
			"timestep": event.Timestep,
		})
	}

	return j.next.Emit(ctx, event)
}

// GormAuthStringStore records recovered credentials for a run
type GormAuthStringStore struct {
	db    *gorm.DB
	runID string
	clock shared.Clock
}

// NewGormAuthStringStore creates a credential store. If clock is nil, uses RealClock.
func NewGormAuthStringStore(db *gorm.DB, runID string, clock shared.Clock) *GormAuthStringStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormAuthStringStore{db: db, runID: runID, clock: clock}
}

func (s *GormAuthStringStore) Put(ctx context.Context, dockID int, credential string) error {
	model := &CredentialModel{
		RunID:      s.runID,
		DockID:     dockID,
		Credential: credential,
		RecordedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to store credential for dock %d: %w", dockID, err)
	}
	return nil
}
