package simulator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

// Scenario is a scripted run of the port, loaded from YAML
type Scenario struct {
	Name      string         `yaml:"name"`
	Seed      uint64         `yaml:"seed"`
	Workers   int            `yaml:"workers"`
	Docks     []DockSpec     `yaml:"docks"`
	Secrets   map[int]string `yaml:"secrets"`
	Timesteps []TimestepSpec `yaml:"timesteps"`

	// Drain appends this many empty timesteps after the last scripted one
	Drain int `yaml:"drain"`
}

type DockSpec struct {
	Category int   `yaml:"category"`
	Cranes   []int `yaml:"cranes"`
}

type TimestepSpec struct {
	Timestep int           `yaml:"timestep"`
	Requests []RequestSpec `yaml:"requests"`
}

// RequestSpec is a ship request whose direction may be written as a word
type RequestSpec struct {
	ShipID      int    `yaml:"ship_id"`
	Timestep    *int   `yaml:"timestep,omitempty"`
	Category    int    `yaml:"category"`
	Direction   string `yaml:"direction"`
	Emergency   bool   `yaml:"emergency"`
	WaitingTime int    `yaml:"waiting_time"`
	Cargo       []int  `yaml:"cargo"`
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(sc.Timesteps) == 0 {
		return nil, fmt.Errorf("scenario %q has no timesteps", sc.Name)
	}
	return &sc, nil
}

// DockSpecs converts the layout for the registry
func (sc *Scenario) DockSpecs() []port.DockSpec {
	specs := make([]port.DockSpec, len(sc.Docks))
	for i, d := range sc.Docks {
		specs[i] = port.DockSpec{Category: d.Category, Cranes: d.Cranes}
	}
	return specs
}

// Batches converts the script, plus the drain timesteps and the terminating
// sentinel, into simulator batches
func (sc *Scenario) Batches() ([]*vessel.Batch, error) {
	batches := make([]*vessel.Batch, 0, len(sc.Timesteps)+sc.Drain+1)
	last := 0

	for _, ts := range sc.Timesteps {
		batch := &vessel.Batch{Timestep: ts.Timestep}
		for _, r := range ts.Requests {
			req, err := r.toRequest(ts.Timestep)
			if err != nil {
				return nil, fmt.Errorf("timestep %d ship %d: %w", ts.Timestep, r.ShipID, err)
			}
			batch.Requests = append(batch.Requests, req)
		}
		batches = append(batches, batch)
		last = ts.Timestep
	}

	for i := 1; i <= sc.Drain; i++ {
		batches = append(batches, &vessel.Batch{Timestep: last + i})
	}

	return append(batches, &vessel.Batch{Finished: true}), nil
}

func (r RequestSpec) toRequest(timestep int) (vessel.ShipRequest, error) {
	direction, err := vessel.ParseDirection(r.Direction)
	if err != nil {
		return vessel.ShipRequest{}, err
	}
	arrival := timestep
	if r.Timestep != nil {
		arrival = *r.Timestep
	}
	return vessel.ShipRequest{
		ShipID:      r.ShipID,
		Timestep:    arrival,
		Category:    r.Category,
		Direction:   direction,
		Emergency:   r.Emergency,
		WaitingTime: r.WaitingTime,
		Cargo:       r.Cargo,
	}, nil
}
