package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
)

// defaultFormationAxis is used when the predator sits on the centroid.
var defaultFormationAxis = r2.Vec{X: 0, Y: 1}

// AssignVFormation returns n slot positions forming a V around the flock
// centroid. Each arm is the predator to centroid direction rotated by angle,
// one arm per sign. Robot i takes slot i: robots below n/2 go on the negative
// arm, the rest on the positive arm, with rank |i - n/2| along the arm.
// Slot n/2 sits on the centroid.
func AssignVFormation(n int, centroid, predator r2.Vec, angle, spacing float64) []r2.Vec {
	return AssignVFormationInto(nil, n, centroid, predator, angle, spacing)
}

// AssignVFormationInto is like AssignVFormation but appends to dst.
func AssignVFormationInto(dst []r2.Vec, n int, centroid, predator r2.Vec, angle, spacing float64) []r2.Vec {
	axis := SafeNormalize(r2.Sub(centroid, predator))
	if axis == (r2.Vec{}) {
		axis = defaultFormationAxis
	}
	left := r2.Rotate(axis, -angle, r2.Vec{})
	right := r2.Rotate(axis, angle, r2.Vec{})

	mid := n / 2
	for i := 0; i < n; i++ {
		arm := right
		rank := i - mid
		if i < mid {
			arm = left
			rank = mid - i
		}
		dst = append(dst, r2.Add(centroid, r2.Scale(float64(rank)*spacing, arm)))
	}
	return dst
}

// Centroid returns the mean of the live positions and whether any were given.
func Centroid(flock []SheepState) (r2.Vec, bool) {
	var sum r2.Vec
	n := 0
	for _, s := range flock {
		if !s.Alive {
			continue
		}
		sum = r2.Add(sum, s.Pos)
		n++
	}
	if n == 0 {
		return r2.Vec{}, false
	}
	return r2.Scale(1/float64(n), sum), true
}

// FormationSystem writes a V formation slot into every robot's target.
type FormationSystem struct {
	sheep     *ecs.Filter2[components.Position, components.Health]
	predators *ecs.Filter1[components.Position]
	robots    *ecs.Filter1[components.Robot]

	angle   float64
	spacing float64

	// Reused buffers
	flock   []SheepState
	predPos []r2.Vec
	roles   []*components.Robot
	slots   []r2.Vec
}

// NewFormationSystem creates a formation planner. angle is in radians.
func NewFormationSystem(w *ecs.World, angle, spacing float64) *FormationSystem {
	return &FormationSystem{
		sheep: ecs.NewFilter2[components.Position, components.Health](w).
			With(ecs.C[components.Sheep]()),
		predators: ecs.NewFilter1[components.Position](w).
			With(ecs.C[components.Predator]()),
		robots:  ecs.NewFilter1[components.Robot](w),
		angle:   angle,
		spacing: spacing,
	}
}

// Update assigns targets. With no live sheep or no predator, targets keep
// their previous values.
func (s *FormationSystem) Update() (centroid r2.Vec, ok bool) {
	s.flock = s.flock[:0]
	query := s.sheep.Query()
	for query.Next() {
		pos, health := query.Get()
		s.flock = append(s.flock, SheepState{Pos: pos.Vec, Alive: health.Alive})
	}
	centroid, ok = Centroid(s.flock)
	s.predPos = CollectPositions(s.predators, s.predPos[:0])

	s.roles = s.roles[:0]
	robots := s.robots.Query()
	for robots.Next() {
		role := robots.Get()
		s.roles = append(s.roles, role)
	}

	if !ok || len(s.predPos) == 0 || len(s.roles) == 0 {
		return centroid, ok
	}

	s.slots = AssignVFormationInto(s.slots[:0], len(s.roles), centroid, s.predPos[0], s.angle, s.spacing)
	for _, role := range s.roles {
		if role.ID >= 0 && role.ID < len(s.slots) {
			role.Target = s.slots[role.ID]
		}
	}
	return centroid, ok
}
