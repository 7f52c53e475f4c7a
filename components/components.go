// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an entity's world position.
type Position struct {
	r2.Vec
}

// Velocity represents an entity's velocity in world units per tick.
type Velocity struct {
	r2.Vec
}

// Health tracks a sheep's remaining health.
// Alive flips to false exactly once, when Value reaches zero.
type Health struct {
	Value float64
	Max   float64
	Alive bool
}

// Ratio returns Value/Max for display.
func (h *Health) Ratio() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Value / h.Max
}

// Damage subtracts amount and reports whether this call killed the sheep.
// Dead sheep take no further damage.
func (h *Health) Damage(amount float64) bool {
	if !h.Alive {
		return false
	}
	h.Value -= amount
	if h.Value <= 0 {
		h.Value = 0
		h.Alive = false
		return true
	}
	return false
}

// Robot holds a defender's formation role.
type Robot struct {
	ID     int    // Stable role index, used for formation side and rank
	Target r2.Vec // Written by the formation planner once per tick
}

// Obstacle is a static circular hazard.
type Obstacle struct {
	Radius float64
}

// Sheep tag component for efficient querying.
type Sheep struct{}

// Predator tag component for efficient querying.
type Predator struct{}
