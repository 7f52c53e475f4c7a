package config

import (
	"errors"
	"fmt"
)

// FieldError describes one invalid configuration value.
type FieldError struct {
	Field  string // yaml path, e.g. "sheep.max_speed"
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks every parameter and returns all violations joined into one
// error, or nil. Derived values must be current.
func (c *Config) Validate() error {
	v := &validator{}

	v.positive("world.width", c.Derived.WorldW)
	v.positive("world.height", c.Derived.WorldH)

	v.nonNegativeInt("population.sheep", c.Population.Sheep)
	v.nonNegativeInt("population.predators", c.Population.Predators)
	v.nonNegativeInt("population.robots", c.Population.Robots)
	v.nonNegativeInt("population.obstacles", c.Population.Obstacles)
	if c.Derived.NumSheep+c.Derived.NumPredators+c.Derived.NumRobots+c.Derived.NumObstacles == 0 {
		v.fail("population", "world has no agents or obstacles")
	}

	s := &c.Sheep
	v.positive("sheep.max_speed", s.MaxSpeed)
	v.positive("sheep.max_health", s.MaxHealth)
	v.nonNegative("sheep.neighbor_radius", s.NeighborRadius)
	v.nonNegative("sheep.separation_radius", s.SeparationRadius)
	v.nonNegative("sheep.predator_avoid_radius", s.PredatorAvoidRadius)
	v.nonNegative("sheep.panic_radius", s.PanicRadius)
	v.nonNegative("sheep.panic_jitter", s.PanicJitter)
	if s.PanicSpeedFactor < 1 {
		v.fail("sheep.panic_speed_factor", fmt.Sprintf("must be >= 1, got %g", s.PanicSpeedFactor))
	}
	v.nonNegative("sheep.alignment_weight", s.AlignmentWeight)
	v.nonNegative("sheep.cohesion_weight", s.CohesionWeight)
	v.nonNegative("sheep.separation_weight", s.SeparationWeight)
	v.nonNegative("sheep.avoid_weight", s.AvoidWeight)

	v.positive("predator.speed", c.Predator.Speed)
	v.nonNegative("predator.contact_radius", c.Predator.ContactRadius)
	v.nonNegative("predator.damage", c.Predator.Damage)

	r := &c.Robot
	v.positive("robot.speed", r.Speed)
	v.nonNegative("robot.defense_radius", r.DefenseRadius)
	v.nonNegative("robot.push_radius", r.PushRadius)
	v.nonNegative("robot.push_strength", r.PushStrength)
	v.nonNegative("robot.intercept_lead", r.InterceptLead)
	v.nonNegative("robot.intercept_weight", r.InterceptWeight)

	v.nonNegative("obstacle.radius", c.Obstacle.Radius)
	v.nonNegative("obstacle.avoid_radius", c.Obstacle.AvoidRadius)

	v.nonNegative("formation.spacing", c.Formation.Spacing)

	v.inBounds("layout.sheep", c.Layout.Sheep, c.Derived.WorldW, c.Derived.WorldH)
	v.inBounds("layout.predators", c.Layout.Predators, c.Derived.WorldW, c.Derived.WorldH)
	v.inBounds("layout.robots", c.Layout.Robots, c.Derived.WorldW, c.Derived.WorldH)
	v.inBounds("layout.obstacles", c.Layout.Obstacles, c.Derived.WorldW, c.Derived.WorldH)

	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) fail(field, reason string) {
	v.errs = append(v.errs, &FieldError{Field: field, Reason: reason})
}

func (v *validator) positive(field string, x float64) {
	if !(x > 0) {
		v.fail(field, fmt.Sprintf("must be > 0, got %g", x))
	}
}

func (v *validator) nonNegative(field string, x float64) {
	if !(x >= 0) {
		v.fail(field, fmt.Sprintf("must be >= 0, got %g", x))
	}
}

func (v *validator) nonNegativeInt(field string, n int) {
	if n < 0 {
		v.fail(field, fmt.Sprintf("must be >= 0, got %d", n))
	}
}

func (v *validator) inBounds(field string, pts []Point, w, h float64) {
	for i, p := range pts {
		if p.X < 0 || p.X > w || p.Y < 0 || p.Y > h {
			v.fail(fmt.Sprintf("%s[%d]", field, i),
				fmt.Sprintf("(%g, %g) outside world %gx%g", p.X, p.Y, w, h))
		}
	}
}
