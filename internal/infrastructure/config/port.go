package config

import (
	"time"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// PortConfig holds the fixed dock layout. The position of a dock is its id,
// the position of a crane within a dock is the crane id.
type PortConfig struct {
	Docks []DockConfig `mapstructure:"docks" validate:"required,min=1,dive"`
}

// DockConfig describes one dock
type DockConfig struct {
	Category int   `mapstructure:"category" validate:"min=1,max=25"`
	Cranes   []int `mapstructure:"cranes" validate:"required,min=1,max=25,dive,min=1"`
}

// DockSpecs converts the layout for the dock registry
func (c PortConfig) DockSpecs() []port.DockSpec {
	specs := make([]port.DockSpec, len(c.Docks))
	for i, d := range c.Docks {
		specs[i] = port.DockSpec{Category: d.Category, Cranes: d.Cranes}
	}
	return specs
}

// SearchConfig holds credential search configuration
type SearchConfig struct {
	// Number of concurrent search workers
	Workers int `mapstructure:"workers" validate:"min=2,max=8"`

	// Oracle queries per second per worker, 0 = unlimited
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`

	// Limiter burst size
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// SimulatorConfig holds the simulator boundary configuration
type SimulatorConfig struct {
	// WebSocket URL of the simulator
	URL string `mapstructure:"url" validate:"required"`

	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" validate:"required"`
}

// OracleConfig holds the oracle boundary configuration
type OracleConfig struct {
	// gRPC address (host:port or unix:/path.sock)
	Address string `mapstructure:"address" validate:"required"`

	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"required"`

	// Consecutive transport failures before calls fail fast, and for how long
	BreakerFailures int           `mapstructure:"breaker_failures" validate:"gte=0"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}
