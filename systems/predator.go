package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// PursuitParams holds predator parameters.
type PursuitParams struct {
	Speed         float64
	ContactRadius float64
	Damage        float64
}

// PursuitParamsFrom extracts pursuit parameters from a config.
func PursuitParamsFrom(cfg *config.Config) PursuitParams {
	return PursuitParams{
		Speed:         cfg.Predator.Speed,
		ContactRadius: cfg.Predator.ContactRadius,
		Damage:        cfg.Predator.Damage,
	}
}

// PreyTarget is a sheep as seen by a hunting predator.
type PreyTarget struct {
	Pos   r2.Vec
	Alive bool
}

// NearestLiving returns the index of the closest live prey and its distance.
// Ties go to the lowest index. It returns -1 when no prey is alive.
func NearestLiving(from r2.Vec, prey []PreyTarget) (int, float64) {
	best := -1
	bestDist := 0.0
	for i, t := range prey {
		if !t.Alive {
			continue
		}
		d := distance(t.Pos, from)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// PursuitResult is the outcome of one predator step.
type PursuitResult struct {
	Pos    r2.Vec
	Vel    r2.Vec
	Target int  // index into prey, -1 if none alive
	Bite   bool // target was within contact radius before moving
}

// PursueStep chases the nearest live prey. Contact is measured before the move.
// With no live prey the predator stays put.
func PursueStep(pos r2.Vec, prey []PreyTarget, p *PursuitParams, bounds Bounds) PursuitResult {
	target, dist := NearestLiving(pos, prey)
	if target < 0 {
		return PursuitResult{Pos: pos, Target: -1}
	}
	step := LimitVector(r2.Sub(prey[target].Pos, pos), p.Speed)
	return PursuitResult{
		Pos:    bounds.Integrate(pos, step),
		Vel:    step,
		Target: target,
		Bite:   dist < p.ContactRadius,
	}
}

// PursuitSystem moves predators and applies bites.
type PursuitSystem struct {
	predators *ecs.Filter2[components.Position, components.Velocity]
	sheep     *ecs.Filter2[components.Position, components.Health]
	healthMap *ecs.Map[components.Health]

	params PursuitParams
	bounds Bounds

	// Reused buffers
	prey     []PreyTarget
	entities []ecs.Entity
}

// NewPursuitSystem creates a pursuit system for the given world.
func NewPursuitSystem(w *ecs.World, params PursuitParams, bounds Bounds) *PursuitSystem {
	return &PursuitSystem{
		predators: ecs.NewFilter2[components.Position, components.Velocity](w).
			With(ecs.C[components.Predator]()),
		sheep: ecs.NewFilter2[components.Position, components.Health](w).
			With(ecs.C[components.Sheep]()),
		healthMap: ecs.NewMap[components.Health](w),
		params:    params,
		bounds:    bounds,
	}
}

// Update moves every predator in creation order. Damage from one predator is
// visible to the next. Bites and kills are recorded in events.
func (s *PursuitSystem) Update(events *TickEvents) {
	s.prey = s.prey[:0]
	s.entities = s.entities[:0]
	query := s.sheep.Query()
	for query.Next() {
		pos, health := query.Get()
		s.prey = append(s.prey, PreyTarget{Pos: pos.Vec, Alive: health.Alive})
		s.entities = append(s.entities, query.Entity())
	}

	preds := s.predators.Query()
	for preds.Next() {
		pos, vel := preds.Get()
		res := PursueStep(pos.Vec, s.prey, &s.params, s.bounds)
		if res.Bite {
			events.Bites++
			health := s.healthMap.Get(s.entities[res.Target])
			if health.Damage(s.params.Damage) {
				s.prey[res.Target].Alive = false
				events.Kills = append(events.Kills, Kill{Sheep: res.Target, At: s.prey[res.Target].Pos})
			}
		}
		pos.Vec = res.Pos
		vel.Vec = res.Vel
	}
}
