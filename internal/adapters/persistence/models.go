package persistence

import (
	"time"
)

// RunModel represents the runs table
type RunModel struct {
	ID         string     `gorm:"column:id;primaryKey;not null"`
	Mode       string     `gorm:"column:mode;not null"`
	Status     string     `gorm:"column:status;not null"`
	Docks      int        `gorm:"column:docks;not null"`
	Workers    int        `gorm:"column:workers;not null"`
	StartedAt  time.Time  `gorm:"column:started_at;not null"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
	Summary    string     `gorm:"column:summary;type:text"` // JSON as text
}

func (RunModel) TableName() string {
	return "runs"
}

// EventModel represents the events table, one row per emitted lifecycle event
type EventModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string    `gorm:"column:run_id;not null;index:idx_events_run_seq,priority:1"`
	Sequence   int       `gorm:"column:sequence;not null;index:idx_events_run_seq,priority:2"`
	Timestep   int       `gorm:"column:timestep;not null"`
	Kind       string    `gorm:"column:kind;not null"`
	ShipID     int       `gorm:"column:ship_id"`
	Direction  int       `gorm:"column:direction"`
	DockID     int       `gorm:"column:dock_id"`
	CargoIndex int       `gorm:"column:cargo_index"`
	CraneID    int       `gorm:"column:crane_id"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null"`
}

func (EventModel) TableName() string {
	return "events"
}

// CredentialModel represents the credentials table
type CredentialModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string    `gorm:"column:run_id;not null;index"`
	DockID     int       `gorm:"column:dock_id;not null"`
	Credential string    `gorm:"column:credential;not null"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null"`
}

func (CredentialModel) TableName() string {
	return "credentials"
}

// RunLogModel represents the run_logs table
type RunLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (RunLogModel) TableName() string {
	return "run_logs"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&RunModel{},
		&EventModel{},
		&CredentialModel{},
		&RunLogModel{},
	}
}
