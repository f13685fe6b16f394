package persistence

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// RunLogRepository manages run log persistence
type RunLogRepository interface {
	// Log writes a log entry to the database
	Log(ctx context.Context, runID, message, level string, metadata map[string]interface{}) error

	// GetLogs retrieves logs for a run with optional filtering, newest first
	GetLogs(ctx context.Context, runID string, limit int, level *string, since *time.Time) ([]RunLogEntry, error)
}

// RunLogEntry represents a log entry
type RunLogEntry struct {
	ID        int
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormRunLogRepository is a GORM-based implementation
type GormRunLogRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormRunLogRepository creates a new run log repository
// If clock is nil, uses RealClock (production behavior)
func NewGormRunLogRepository(db *gorm.DB, clock shared.Clock) *GormRunLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormRunLogRepository{db: db, clock: clock}
}

// Log writes a log entry
func (r *GormRunLogRepository) Log(ctx context.Context, runID, message, level string, metadata map[string]interface{}) error {
	// Marshal metadata to JSON string
	var metadataJSON string
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	entry := &RunLogModel{
		RunID:     runID,
		Timestamp: r.clock.Now(),
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}

	return r.db.WithContext(ctx).Create(entry).Error
}

// GetLogs retrieves logs for a run with optional filtering
func (r *GormRunLogRepository) GetLogs(ctx context.Context, runID string, limit int, level *string, since *time.Time) ([]RunLogEntry, error) {
	var models []RunLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)

	if level != nil {
		query = query.Where("level = ?", *level)
	}

	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}

	query = query.Order("timestamp DESC").Order("id DESC").Limit(limit)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]RunLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = RunLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}
