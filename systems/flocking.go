package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// FlockParams holds the sheep steering parameters.
type FlockParams struct {
	MaxSpeed            float64
	NeighborRadius      float64
	SeparationRadius    float64
	PredatorAvoidRadius float64
	PanicRadius         float64
	ObstacleAvoidRadius float64
	PanicJitter         float64
	PanicSpeedFactor    float64
	AlignmentWeight     float64
	CohesionWeight      float64
	SeparationWeight    float64
	AvoidWeight         float64
}

// FlockParamsFrom extracts flocking parameters from a config.
func FlockParamsFrom(cfg *config.Config) FlockParams {
	s := cfg.Sheep
	return FlockParams{
		MaxSpeed:            s.MaxSpeed,
		NeighborRadius:      s.NeighborRadius,
		SeparationRadius:    s.SeparationRadius,
		PredatorAvoidRadius: s.PredatorAvoidRadius,
		PanicRadius:         s.PanicRadius,
		ObstacleAvoidRadius: cfg.Obstacle.AvoidRadius,
		PanicJitter:         s.PanicJitter,
		PanicSpeedFactor:    s.PanicSpeedFactor,
		AlignmentWeight:     s.AlignmentWeight,
		CohesionWeight:      s.CohesionWeight,
		SeparationWeight:    s.SeparationWeight,
		AvoidWeight:         s.AvoidWeight,
	}
}

// SheepState is one sheep as seen by the flock at the start of a tick.
type SheepState struct {
	Pos   r2.Vec
	Vel   r2.Vec
	Alive bool
}

// ObstacleState is a static obstacle position.
type ObstacleState struct {
	Pos    r2.Vec
	Radius float64
}

// FlockResult is the outcome of one sheep's update.
type FlockResult struct {
	Pos       r2.Vec
	Vel       r2.Vec
	Panicking bool
}

// FlockStep computes the next velocity and position of flock[self].
// Every read goes through the snapshot so the result does not depend on
// update order. candidates lists snapshot indices to consider as neighbors in
// ascending order; nil means the whole flock. Dead sheep are returned unchanged.
func FlockStep(
	self int,
	flock []SheepState,
	candidates []int,
	predators []r2.Vec,
	obstacles []ObstacleState,
	p *FlockParams,
	bounds Bounds,
	rng *rand.Rand,
) FlockResult {
	me := flock[self]
	if !me.Alive {
		return FlockResult{Pos: me.Pos, Vel: me.Vel}
	}

	var align, cohesion, separation r2.Vec
	count := 0

	visit := func(j int) {
		if j == self {
			return
		}
		other := flock[j]
		if !other.Alive {
			return
		}
		d := distance(other.Pos, me.Pos)
		if d >= p.NeighborRadius {
			return
		}
		align = r2.Add(align, other.Vel)
		cohesion = r2.Add(cohesion, other.Pos)
		if d < p.SeparationRadius {
			separation = r2.Sub(separation, SafeNormalize(r2.Sub(other.Pos, me.Pos)))
		}
		count++
	}
	if candidates == nil {
		for j := range flock {
			visit(j)
		}
	} else {
		for _, j := range candidates {
			visit(j)
		}
	}

	if count > 0 {
		n := float64(count)
		align = r2.Sub(LimitVector(r2.Scale(1/n, align), p.MaxSpeed), me.Vel)
		center := r2.Scale(1/n, cohesion)
		cohesion = r2.Sub(LimitVector(r2.Sub(center, me.Pos), p.MaxSpeed), me.Vel)
		separation = LimitVector(separation, p.MaxSpeed)
	}

	var avoid r2.Vec
	panicking := false
	for _, pred := range predators {
		away := r2.Sub(me.Pos, pred)
		d := r2.Norm(away)
		if d < p.PanicRadius {
			panicking = true
		}
		if d > 0 && d < p.PredatorAvoidRadius {
			avoid = r2.Add(avoid, r2.Scale(1/d, away))
		}
	}
	for _, ob := range obstacles {
		away := r2.Sub(me.Pos, ob.Pos)
		d := r2.Norm(away)
		if d > 0 && d < p.ObstacleAvoidRadius {
			avoid = r2.Add(avoid, r2.Scale(1/d, away))
		}
	}

	vel := me.Vel
	vel = r2.Add(vel, r2.Scale(p.AlignmentWeight, align))
	vel = r2.Add(vel, r2.Scale(p.CohesionWeight, cohesion))
	vel = r2.Add(vel, r2.Scale(p.SeparationWeight, separation))
	vel = r2.Add(vel, r2.Scale(p.AvoidWeight, avoid))

	speedCap := p.MaxSpeed
	if panicking {
		if rng != nil && p.PanicJitter > 0 {
			vel = r2.Add(vel, r2.Scale(p.PanicJitter, unitFromAngle(rng.Float64()*2*math.Pi)))
		}
		speedCap = p.MaxSpeed * p.PanicSpeedFactor
	}
	vel = LimitVector(vel, speedCap)

	return FlockResult{
		Pos:       bounds.Integrate(me.Pos, vel),
		Vel:       vel,
		Panicking: panicking,
	}
}

// FlockingSystem updates every sheep from a snapshot taken before any of them move.
type FlockingSystem struct {
	sheep     *ecs.Filter3[components.Position, components.Velocity, components.Health]
	predators *ecs.Filter1[components.Position]
	obstacles *ecs.Filter2[components.Position, components.Obstacle]

	params FlockParams
	bounds Bounds
	grid   *SpatialGrid

	// Reused buffers
	snapshot   []SheepState
	candidates []int
	predPos    []r2.Vec
	obstState  []ObstacleState
}

// NewFlockingSystem creates a flocking system for the given world.
func NewFlockingSystem(w *ecs.World, params FlockParams, bounds Bounds) *FlockingSystem {
	return &FlockingSystem{
		sheep: ecs.NewFilter3[components.Position, components.Velocity, components.Health](w).
			With(ecs.C[components.Sheep]()),
		predators: ecs.NewFilter1[components.Position](w).
			With(ecs.C[components.Predator]()),
		obstacles: ecs.NewFilter2[components.Position, components.Obstacle](w),
		params:    params,
		bounds:    bounds,
		grid:      NewSpatialGrid(bounds.Width, bounds.Height, params.NeighborRadius),
	}
}

// Update applies one flocking step and returns the number of panicking sheep.
func (s *FlockingSystem) Update(rng *rand.Rand) int {
	s.predPos = CollectPositions(s.predators, s.predPos[:0])
	s.obstState = CollectObstacles(s.obstacles, s.obstState[:0])

	// Pass 1: snapshot
	s.snapshot = s.snapshot[:0]
	s.grid.Clear()
	query := s.sheep.Query()
	for query.Next() {
		pos, vel, health := query.Get()
		if health.Alive {
			s.grid.Insert(len(s.snapshot), pos.Vec)
		}
		s.snapshot = append(s.snapshot, SheepState{Pos: pos.Vec, Vel: vel.Vec, Alive: health.Alive})
	}

	// Pass 2: apply in the same order
	panicking := 0
	i := 0
	query = s.sheep.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		if s.snapshot[i].Alive {
			s.candidates = s.grid.QueryInto(s.candidates[:0], s.snapshot[i].Pos, s.params.NeighborRadius)
			res := FlockStep(i, s.snapshot, s.candidates, s.predPos, s.obstState, &s.params, s.bounds, rng)
			pos.Vec = res.Pos
			vel.Vec = res.Vel
			if res.Panicking {
				panicking++
			}
		}
		i++
	}
	return panicking
}

// CollectPositions appends the position of every entity matching the filter.
func CollectPositions(f *ecs.Filter1[components.Position], dst []r2.Vec) []r2.Vec {
	query := f.Query()
	for query.Next() {
		pos := query.Get()
		dst = append(dst, pos.Vec)
	}
	return dst
}

// CollectObstacles appends every obstacle in creation order.
func CollectObstacles(f *ecs.Filter2[components.Position, components.Obstacle], dst []ObstacleState) []ObstacleState {
	query := f.Query()
	for query.Next() {
		pos, ob := query.Get()
		dst = append(dst, ObstacleState{Pos: pos.Vec, Radius: ob.Radius})
	}
	return dst
}
