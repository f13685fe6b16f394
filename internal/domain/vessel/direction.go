package vessel

import "fmt"

// Direction of travel relative to the port
type Direction int

const (
	// DirectionNone marks a ship with no pending movement; it is inert
	DirectionNone Direction = 0

	// DirectionInbound ships unload at the dock
	DirectionInbound Direction = 1

	// DirectionOutbound ships load at the dock
	DirectionOutbound Direction = -1
)

func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	case DirectionNone:
		return "none"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ShipKey identifies a ship inside the queues. The same ship id may appear once
// per direction.
type ShipKey struct {
	ID        int
	Direction Direction
}

func (k ShipKey) String() string {
	return fmt.Sprintf("%d/%s", k.ID, k.Direction)
}

// ParseDirection accepts "inbound", "outbound", "none" or the numeric form
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "inbound", "1", "+1":
		return DirectionInbound, nil
	case "outbound", "-1":
		return DirectionOutbound, nil
	case "none", "0", "":
		return DirectionNone, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}
