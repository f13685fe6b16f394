package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// Run statuses
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// RunRecord describes one scheduler run
type RunRecord struct {
	ID         string
	Mode       string
	Status     string
	Docks      int
	Workers    int
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    map[string]interface{}
}

// EventRecord is one journaled event
type EventRecord struct {
	Sequence   int
	Timestep   int
	Kind       string
	ShipID     int
	Direction  int
	DockID     int
	CargoIndex int
	CraneID    int
	RecordedAt time.Time
}

// GormRunRepository stores run metadata and reads back the journal
type GormRunRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormRunRepository creates a run repository.
// If clock is nil, uses RealClock.
func NewGormRunRepository(db *gorm.DB, clock shared.Clock) *GormRunRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormRunRepository{db: db, clock: clock}
}

// Start records a new running run
func (r *GormRunRepository) Start(ctx context.Context, runID, mode string, docks, workers int) error {
	model := &RunModel{
		ID:        runID,
		Mode:      mode,
		Status:    RunStatusRunning,
		Docks:     docks,
		Workers:   workers,
		StartedAt: r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// Finish stamps a run with its final status and summary
func (r *GormRunRepository) Finish(ctx context.Context, runID, status string, summary map[string]interface{}) error {
	var summaryJSON string
	if len(summary) > 0 {
		if b, err := json.Marshal(summary); err == nil {
			summaryJSON = string(b)
		}
	}

	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&RunModel{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": now,
			"summary":     summaryJSON,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record run finish: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// FindByID returns one run
func (r *GormRunRepository) FindByID(ctx context.Context, runID string) (*RunRecord, error) {
	var model RunModel
	err := r.db.WithContext(ctx).Where("id = ?", runID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return runFromModel(model), nil
}

// List returns the most recent runs first
func (r *GormRunRepository) List(ctx context.Context, limit int) ([]RunRecord, error) {
	var models []RunModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]RunRecord, len(models))
	for i, m := range models {
		runs[i] = *runFromModel(m)
	}
	return runs, nil
}

// Events returns a run's journal in emission order, optionally filtered by kind
func (r *GormRunRepository) Events(ctx context.Context, runID string, kind *string, limit int) ([]EventRecord, error) {
	var models []EventModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	query = query.Order("sequence ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]EventRecord, len(models))
	for i, m := range models {
		events[i] = EventRecord{
			Sequence:   m.Sequence,
			Timestep:   m.Timestep,
			Kind:       m.Kind,
			ShipID:     m.ShipID,
			Direction:  m.Direction,
			DockID:     m.DockID,
			CargoIndex: m.CargoIndex,
			CraneID:    m.CraneID,
			RecordedAt: m.RecordedAt,
		}
	}
	return events, nil
}

// Credentials returns the credentials recovered during a run, by dock id
func (r *GormRunRepository) Credentials(ctx context.Context, runID string) (map[int]string, error) {
	var models []CredentialModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	out := make(map[int]string, len(models))
	for _, m := range models {
		out[m.DockID] = m.Credential
	}
	return out, nil
}

func runFromModel(m RunModel) *RunRecord {
	var summary map[string]interface{}
	if m.Summary != "" {
		if err := json.Unmarshal([]byte(m.Summary), &summary); err != nil {
			summary = nil
		}
	}
	return &RunRecord{
		ID:         m.ID,
		Mode:       m.Mode,
		Status:     m.Status,
		Docks:      m.Docks,
		Workers:    m.Workers,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Summary:    summary,
	}
}
