// Package game owns the simulation world and drives it headless or in a window.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/systems"
	"github.com/pthm-cable/herd/telemetry"
)

// World holds the complete simulation state: every agent, the obstacles,
// the tick counter and the single random source.
type World struct {
	cfg    *config.Config
	seed   int64
	rng    *rand.Rand
	world  *ecs.World
	bounds systems.Bounds

	// Entity mappers for spawning
	sheepMap    *ecs.Map4[components.Position, components.Velocity, components.Health, components.Sheep]
	predatorMap *ecs.Map3[components.Position, components.Velocity, components.Predator]
	robotMap    *ecs.Map3[components.Position, components.Velocity, components.Robot]
	obstacleMap *ecs.Map2[components.Position, components.Obstacle]

	// Filters for the query surface
	sheepFilter    *ecs.Filter3[components.Position, components.Velocity, components.Health]
	predatorFilter *ecs.Filter2[components.Position, components.Velocity]
	robotFilter    *ecs.Filter2[components.Position, components.Robot]
	obstacleFilter *ecs.Filter2[components.Position, components.Obstacle]

	// Systems in tick order
	formation *systems.FormationSystem
	flocking  *systems.FlockingSystem
	pursuit   *systems.PursuitSystem
	defense   *systems.DefenseSystem

	// State
	tick       uint64
	totalSheep int
	liveSheep  int
	events     systems.TickEvents

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	telemetryOpts    TelemetryOptions
}

// New creates a world from a validated config. The seed drives every random
// decision, so equal configs and seeds produce identical runs.
func New(cfg *config.Config, seed int64) (*World, error) {
	if cfg == nil {
		return nil, errors.New("invalid config: nil config")
	}
	cfg = cfg.Clone()
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	w := &World{
		cfg:           cfg,
		seed:          seed,
		bounds:        systems.Bounds{Width: cfg.Derived.WorldW, Height: cfg.Derived.WorldH},
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	w.telemetryOpts.StatsWindow = cfg.Telemetry.StatsWindow
	w.Reset()

	slog.Info("world created",
		"seed", seed,
		"width", w.bounds.Width,
		"height", w.bounds.Height,
		"sheep", cfg.Derived.NumSheep,
		"predators", cfg.Derived.NumPredators,
		"robots", cfg.Derived.NumRobots,
		"obstacles", cfg.Derived.NumObstacles,
	)
	return w, nil
}

// Reset re-initializes the world from its config and seed.
func (w *World) Reset() {
	w.world = ecs.NewWorld()
	w.rng = rand.New(rand.NewSource(w.seed))

	w.sheepMap = ecs.NewMap4[components.Position, components.Velocity, components.Health, components.Sheep](w.world)
	w.predatorMap = ecs.NewMap3[components.Position, components.Velocity, components.Predator](w.world)
	w.robotMap = ecs.NewMap3[components.Position, components.Velocity, components.Robot](w.world)
	w.obstacleMap = ecs.NewMap2[components.Position, components.Obstacle](w.world)

	w.sheepFilter = ecs.NewFilter3[components.Position, components.Velocity, components.Health](w.world).
		With(ecs.C[components.Sheep]())
	w.predatorFilter = ecs.NewFilter2[components.Position, components.Velocity](w.world).
		With(ecs.C[components.Predator]())
	w.robotFilter = ecs.NewFilter2[components.Position, components.Robot](w.world)
	w.obstacleFilter = ecs.NewFilter2[components.Position, components.Obstacle](w.world)

	w.formation = systems.NewFormationSystem(w.world, w.cfg.Derived.FormationAngleRad, w.cfg.Formation.Spacing)
	w.flocking = systems.NewFlockingSystem(w.world, systems.FlockParamsFrom(w.cfg), w.bounds)
	w.pursuit = systems.NewPursuitSystem(w.world, systems.PursuitParamsFrom(w.cfg), w.bounds)
	w.defense = systems.NewDefenseSystem(w.world, systems.DefenseParamsFrom(w.cfg), w.bounds)

	w.tick = 0
	w.events.Reset()
	w.spawnInitialPopulation()

	w.collector = telemetry.NewCollector(w.telemetryOpts.StatsWindow)
	w.bookmarkDetector = telemetry.NewBookmarkDetector(
		w.cfg.Telemetry.BookmarkHistory,
		w.cfg.Telemetry.HeavyLossesKills,
		w.cfg.Telemetry.ShieldWindows,
	)
}

// Step advances the world by exactly one tick: formation targets, then every
// sheep from one snapshot, then predators, then robots.
func (w *World) Step() {
	w.perfCollector.StartTick()
	w.events.Reset()

	w.perfCollector.StartPhase(telemetry.PhaseFormation)
	w.formation.Update()

	w.perfCollector.StartPhase(telemetry.PhaseFlocking)
	w.events.Panicking = w.flocking.Update(w.rng)

	w.perfCollector.StartPhase(telemetry.PhasePursuit)
	w.pursuit.Update(&w.events)

	w.perfCollector.StartPhase(telemetry.PhaseDefense)
	w.defense.Update(&w.events)

	w.tick++

	w.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	w.recordTick()
	w.flushTelemetry()

	w.perfCollector.EndTick(w.liveSheep)
}

// Config returns the world's resolved configuration. It must not be modified.
func (w *World) Config() *config.Config {
	return w.cfg
}

// Seed returns the seed the world was created with.
func (w *World) Seed() int64 {
	return w.seed
}

// Tick returns the number of completed ticks since the last reset.
func (w *World) Tick() uint64 {
	return w.tick
}

// Bounds returns the world bounds.
func (w *World) Bounds() systems.Bounds {
	return w.bounds
}

// LiveSheep returns the number of sheep still alive.
func (w *World) LiveSheep() int {
	return w.liveSheep
}

// TotalSheep returns the number of sheep created at reset, dead or alive.
func (w *World) TotalSheep() int {
	return w.totalSheep
}

// LastEvents returns what happened during the most recent tick.
func (w *World) LastEvents() systems.TickEvents {
	ev := w.events
	ev.Kills = append([]systems.Kill(nil), w.events.Kills...)
	return ev
}

// Centroid returns the mean position of live sheep, or false if none are alive.
func (w *World) Centroid() (r2.Vec, bool) {
	var sum r2.Vec
	n := 0
	query := w.sheepFilter.Query()
	for query.Next() {
		pos, _, health := query.Get()
		if health.Alive {
			sum = r2.Add(sum, pos.Vec)
			n++
		}
	}
	if n == 0 {
		return r2.Vec{}, false
	}
	return r2.Scale(1/float64(n), sum), true
}
