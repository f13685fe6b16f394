package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// Frame types exchanged with the simulator
const (
	TypeHello       = "hello"
	TypeTimestep    = "timestep"
	TypeFinished    = "finished"
	TypeDock        = "dock"
	TypeMoveCargo   = "move_cargo"
	TypeUndock      = "undock"
	TypeAuthString  = "auth_string"
	TypeEndTimestep = "end_timestep"
)

type baseFrame struct {
	Type string `json:"type"`
}

// HelloFrame opens the session
type HelloFrame struct {
	Type        string `json:"type"`
	WorkerCount int    `json:"worker_count"`
	Docks       int    `json:"docks"`
}

// TimestepFrame carries one timestep's request table
type TimestepFrame struct {
	Type     string               `json:"type"`
	Timestep int                  `json:"timestep"`
	Requests []vessel.ShipRequest `json:"requests"`
}

// EventFrame is one outbound lifecycle notification. Fields absent for the
// kind are omitted.
type EventFrame struct {
	Type       string `json:"type"`
	Timestep   int    `json:"timestep"`
	ShipID     *int   `json:"ship_id,omitempty"`
	Direction  *int   `json:"direction,omitempty"`
	DockID     *int   `json:"dock_id,omitempty"`
	CargoIndex *int   `json:"cargo_index,omitempty"`
	CraneID    *int   `json:"crane_id,omitempty"`
}

// AuthStringFrame publishes a recovered credential
type AuthStringFrame struct {
	Type       string `json:"type"`
	DockID     int    `json:"dock_id"`
	Credential string `json:"credential"`
}

func intPtr(v int) *int { return &v }

// NewEventFrame converts a domain event to its wire form
func NewEventFrame(e port.Event) EventFrame {
	f := EventFrame{Type: string(e.Kind), Timestep: e.Timestep}
	switch e.Kind {
	case port.EventDock, port.EventUndock:
		f.ShipID = intPtr(e.ShipID)
		f.Direction = intPtr(int(e.Direction))
		f.DockID = intPtr(e.DockID)
	case port.EventMoveCargo:
		f.ShipID = intPtr(e.ShipID)
		f.Direction = intPtr(int(e.Direction))
		f.DockID = intPtr(e.DockID)
		f.CargoIndex = intPtr(e.CargoIndex)
		f.CraneID = intPtr(e.CraneID)
	}
	return f
}

// DecodeBatch turns an inbound frame into a batch
func DecodeBatch(msg []byte) (*vessel.Batch, error) {
	var base baseFrame
	if err := json.Unmarshal(msg, &base); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	switch base.Type {
	case TypeFinished:
		return &vessel.Batch{Finished: true}, nil
	case TypeTimestep:
		var f TimestepFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			return nil, fmt.Errorf("invalid timestep frame: %w", err)
		}
		return &vessel.Batch{Timestep: f.Timestep, Requests: f.Requests}, nil
	default:
		return nil, fmt.Errorf("unexpected frame type %q", base.Type)
	}
}
