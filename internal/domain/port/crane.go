package port

import (
	"fmt"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// Crane belongs to exactly one dock and makes at most one move per timestep
type Crane struct {
	id       int
	capacity int
	used     bool
}

// NewCrane creates a crane. The id is its position in the dock's configuration.
func NewCrane(id, capacity int) (*Crane, error) {
	if capacity < 1 {
		return nil, shared.NewValidationError("capacity", fmt.Sprintf("crane %d capacity must be positive, got %d", id, capacity))
	}
	return &Crane{id: id, capacity: capacity}, nil
}

func (c *Crane) ID() int       { return c.id }
func (c *Crane) Capacity() int { return c.capacity }
func (c *Crane) IsUsed() bool  { return c.used }

// CanLift reports whether the crane is free and strong enough for the weight
func (c *Crane) CanLift(weight int) bool {
	return !c.used && weight <= c.capacity
}

// MarkUsed binds the crane for the rest of the timestep
func (c *Crane) MarkUsed() error {
	if c.used {
		return fmt.Errorf("crane %d already used this timestep", c.id)
	}
	c.used = true
	return nil
}

// Reset frees the crane for a new timestep
func (c *Crane) Reset() {
	c.used = false
}
