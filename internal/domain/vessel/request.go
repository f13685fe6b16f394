package vessel

// ShipRequest is one record of the simulator's per-timestep request table
type ShipRequest struct {
	ShipID      int       `json:"ship_id" yaml:"ship_id"`
	Timestep    int       `json:"timestep" yaml:"timestep"`
	Category    int       `json:"category" yaml:"category"`
	Direction   Direction `json:"direction" yaml:"direction"`
	Emergency   bool      `json:"emergency" yaml:"emergency"`
	WaitingTime int       `json:"waiting_time" yaml:"waiting_time"`
	Cargo       []int     `json:"cargo" yaml:"cargo"`
}

// Key returns the queue key of the requested ship
func (r ShipRequest) Key() ShipKey {
	return ShipKey{ID: r.ShipID, Direction: r.Direction}
}

// Batch is everything the simulator hands over for one timestep. Finished
// marks the terminating sentinel; no other field is meaningful then.
type Batch struct {
	Timestep int
	Requests []ShipRequest
	Finished bool
}
