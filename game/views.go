package game

import "gonum.org/v1/gonum/spatial/r2"

// SheepView is a read-only copy of one sheep.
type SheepView struct {
	Pos       r2.Vec
	Vel       r2.Vec
	Health    float64
	MaxHealth float64
	Alive     bool
}

// HealthRatio returns health as a fraction of max health.
func (s SheepView) HealthRatio() float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	return s.Health / s.MaxHealth
}

// RobotView is a read-only copy of one robot.
type RobotView struct {
	ID     int
	Pos    r2.Vec
	Target r2.Vec
}

// ObstacleView is a read-only copy of one obstacle.
type ObstacleView struct {
	Pos    r2.Vec
	Radius float64
}

// Sheep returns every sheep in creation order, dead ones included.
func (w *World) Sheep() []SheepView {
	out := make([]SheepView, 0, w.totalSheep)
	query := w.sheepFilter.Query()
	for query.Next() {
		pos, vel, health := query.Get()
		out = append(out, SheepView{
			Pos:       pos.Vec,
			Vel:       vel.Vec,
			Health:    health.Value,
			MaxHealth: health.Max,
			Alive:     health.Alive,
		})
	}
	return out
}

// Predators returns predator positions in creation order.
func (w *World) Predators() []r2.Vec {
	var out []r2.Vec
	query := w.predatorFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		out = append(out, pos.Vec)
	}
	return out
}

// Robots returns every robot in creation order.
func (w *World) Robots() []RobotView {
	var out []RobotView
	query := w.robotFilter.Query()
	for query.Next() {
		pos, role := query.Get()
		out = append(out, RobotView{ID: role.ID, Pos: pos.Vec, Target: role.Target})
	}
	return out
}

// Obstacles returns every obstacle in creation order.
func (w *World) Obstacles() []ObstacleView {
	var out []ObstacleView
	query := w.obstacleFilter.Query()
	for query.Next() {
		pos, ob := query.Get()
		out = append(out, ObstacleView{Pos: pos.Vec, Radius: ob.Radius})
	}
	return out
}
