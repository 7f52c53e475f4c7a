package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// DefenseParams holds robot parameters.
type DefenseParams struct {
	Speed               float64
	DefenseRadius       float64
	PushRadius          float64
	PushStrength        float64
	InterceptLead       float64
	InterceptWeight     float64
	ObstacleAvoidRadius float64
}

// DefenseParamsFrom extracts defense parameters from a config.
func DefenseParamsFrom(cfg *config.Config) DefenseParams {
	r := cfg.Robot
	return DefenseParams{
		Speed:               r.Speed,
		DefenseRadius:       r.DefenseRadius,
		PushRadius:          r.PushRadius,
		PushStrength:        r.PushStrength,
		InterceptLead:       r.InterceptLead,
		InterceptWeight:     r.InterceptWeight,
		ObstacleAvoidRadius: cfg.Obstacle.AvoidRadius,
	}
}

// DefendStep moves one robot toward its target, biased toward intercepting
// nearby predators. Predators within push radius are shoved away in place and
// clamped to bounds, so later robots see the pushed positions. Interception
// uses the predator position from before the push.
// It returns the new position, the displacement and the number of pushes.
func DefendStep(
	pos, target r2.Vec,
	predators []r2.Vec,
	obstacles []ObstacleState,
	p *DefenseParams,
	bounds Bounds,
) (r2.Vec, r2.Vec, int) {
	steer := r2.Sub(target, pos)
	pushes := 0

	for i, pred := range predators {
		d := distance(pred, pos)
		if d < p.DefenseRadius {
			intercept := r2.Add(pred, r2.Scale(p.InterceptLead, r2.Sub(pred, pos)))
			steer = r2.Add(steer, r2.Scale(p.InterceptWeight, r2.Sub(intercept, pos)))
		}

		// Independent of the defense radius
		if d < p.PushRadius {
			repel := SafeNormalize(r2.Sub(pos, pred))
			if repel != (r2.Vec{}) {
				predators[i] = bounds.Clamp(r2.Sub(pred, r2.Scale(p.PushStrength, repel)))
				pushes++
			}
		}
	}

	for _, ob := range obstacles {
		away := r2.Sub(pos, ob.Pos)
		if r2.Norm(away) < p.ObstacleAvoidRadius {
			steer = r2.Add(steer, SafeNormalize(away))
		}
	}

	steer = LimitVector(steer, p.Speed)
	return bounds.Integrate(pos, steer), steer, pushes
}

// DefenseSystem moves robots in creation order and writes pushes back to predators.
type DefenseSystem struct {
	robots    *ecs.Filter3[components.Position, components.Velocity, components.Robot]
	predators *ecs.Filter1[components.Position]
	obstacles *ecs.Filter2[components.Position, components.Obstacle]

	params DefenseParams
	bounds Bounds

	// Reused buffers
	predPos   []r2.Vec
	obstState []ObstacleState
}

// NewDefenseSystem creates a defense system for the given world.
func NewDefenseSystem(w *ecs.World, params DefenseParams, bounds Bounds) *DefenseSystem {
	return &DefenseSystem{
		robots: ecs.NewFilter3[components.Position, components.Velocity, components.Robot](w),
		predators: ecs.NewFilter1[components.Position](w).
			With(ecs.C[components.Predator]()),
		obstacles: ecs.NewFilter2[components.Position, components.Obstacle](w),
		params:    params,
		bounds:    bounds,
	}
}

// Update moves every robot and records pushes in events.
func (s *DefenseSystem) Update(events *TickEvents) {
	s.predPos = CollectPositions(s.predators, s.predPos[:0])
	s.obstState = CollectObstacles(s.obstacles, s.obstState[:0])

	total := 0
	robots := s.robots.Query()
	for robots.Next() {
		pos, vel, role := robots.Get()
		newPos, step, pushes := DefendStep(pos.Vec, role.Target, s.predPos, s.obstState, &s.params, s.bounds)
		pos.Vec = newPos
		vel.Vec = step
		total += pushes
	}
	events.Pushes += total

	if total == 0 {
		return
	}
	i := 0
	preds := s.predators.Query()
	for preds.Next() {
		pos := preds.Get()
		pos.Vec = s.predPos[i]
		i++
	}
}
