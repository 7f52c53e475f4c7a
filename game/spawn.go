package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// spawnInitialPopulation creates every entity in a fixed kind order: sheep,
// predators, robots, obstacles. Explicit layouts replace random placement per kind.
func (w *World) spawnInitialPopulation() {
	d := w.cfg.Derived
	width, height := w.bounds.Width, w.bounds.Height

	w.totalSheep = 0
	w.liveSheep = 0
	for i := 0; i < d.NumSheep; i++ {
		var pos r2.Vec
		if len(w.cfg.Layout.Sheep) > 0 {
			pos = pointVec(w.cfg.Layout.Sheep[i])
		} else {
			// Middle third of the world
			pos = r2.Vec{
				X: width/3 + w.rng.Float64()*width/3,
				Y: height/3 + w.rng.Float64()*height/3,
			}
		}
		angle := w.rng.Float64() * 2 * math.Pi
		w.spawnSheep(pos, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)})
	}

	for i := 0; i < d.NumPredators; i++ {
		var pos r2.Vec
		if len(w.cfg.Layout.Predators) > 0 {
			pos = pointVec(w.cfg.Layout.Predators[i])
		} else {
			pos = r2.Vec{X: w.rng.Float64() * width, Y: w.rng.Float64() * height}
		}
		w.spawnPredator(pos)
	}

	for i := 0; i < d.NumRobots; i++ {
		var pos r2.Vec
		if len(w.cfg.Layout.Robots) > 0 {
			pos = pointVec(w.cfg.Layout.Robots[i])
		} else {
			// Integer coordinates, edges included
			pos = r2.Vec{
				X: float64(w.rng.Intn(int(width) + 1)),
				Y: float64(w.rng.Intn(int(height) + 1)),
			}
		}
		w.spawnRobot(i, pos)
	}

	inset := w.cfg.Obstacle.AvoidRadius
	for i := 0; i < d.NumObstacles; i++ {
		var pos r2.Vec
		if len(w.cfg.Layout.Obstacles) > 0 {
			pos = pointVec(w.cfg.Layout.Obstacles[i])
		} else {
			pos = r2.Vec{
				X: uniformInset(w.rng.Float64(), inset, width),
				Y: uniformInset(w.rng.Float64(), inset, height),
			}
		}
		w.spawnObstacle(pos)
	}
}

func (w *World) spawnSheep(pos, vel r2.Vec) {
	maxHealth := w.cfg.Sheep.MaxHealth
	w.sheepMap.NewEntity(
		&components.Position{Vec: pos},
		&components.Velocity{Vec: vel},
		&components.Health{Value: maxHealth, Max: maxHealth, Alive: true},
		&components.Sheep{},
	)
	w.totalSheep++
	w.liveSheep++
}

func (w *World) spawnPredator(pos r2.Vec) {
	w.predatorMap.NewEntity(
		&components.Position{Vec: pos},
		&components.Velocity{},
		&components.Predator{},
	)
}

func (w *World) spawnRobot(id int, pos r2.Vec) {
	w.robotMap.NewEntity(
		&components.Position{Vec: pos},
		&components.Velocity{},
		&components.Robot{ID: id, Target: pos},
	)
}

func (w *World) spawnObstacle(pos r2.Vec) {
	w.obstacleMap.NewEntity(
		&components.Position{Vec: pos},
		&components.Obstacle{Radius: w.cfg.Obstacle.Radius},
	)
}

// uniformInset maps u in [0,1) onto [inset, size-inset]. When the inset
// leaves no room the centre is used.
func uniformInset(u, inset, size float64) float64 {
	if size-2*inset <= 0 {
		return size / 2
	}
	return inset + u*(size-2*inset)
}

func pointVec(p config.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
