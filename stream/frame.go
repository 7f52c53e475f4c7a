// Package stream publishes simulation frames to websocket spectators.
package stream

import "github.com/pthm-cable/herd/game"

// Frame is one published tick, copied out of the world.
type Frame struct {
	Tick       uint64          `json:"tick"`
	LiveSheep  int             `json:"live_sheep"`
	TotalSheep int             `json:"total_sheep"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Sheep      []SheepFrame    `json:"sheep"`
	Predators  []PointFrame    `json:"predators"`
	Robots     []RobotFrame    `json:"robots"`
	Obstacles  []ObstacleFrame `json:"obstacles"`
}

// PointFrame is a bare position.
type PointFrame struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SheepFrame is one sheep. Health is the fraction of max health.
type SheepFrame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Alive  bool    `json:"alive"`
}

// RobotFrame is one robot and its formation slot.
type RobotFrame struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TargetX float64 `json:"target_x"`
	TargetY float64 `json:"target_y"`
}

// ObstacleFrame is one obstacle.
type ObstacleFrame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// NewFrame copies the current state of w.
func NewFrame(w *game.World) Frame {
	b := w.Bounds()
	f := Frame{
		Tick:       w.Tick(),
		LiveSheep:  w.LiveSheep(),
		TotalSheep: w.TotalSheep(),
		Width:      b.Width,
		Height:     b.Height,
	}

	sheep := w.Sheep()
	f.Sheep = make([]SheepFrame, len(sheep))
	for i, s := range sheep {
		f.Sheep[i] = SheepFrame{X: s.Pos.X, Y: s.Pos.Y, Health: s.HealthRatio(), Alive: s.Alive}
	}

	preds := w.Predators()
	f.Predators = make([]PointFrame, len(preds))
	for i, p := range preds {
		f.Predators[i] = PointFrame{X: p.X, Y: p.Y}
	}

	robots := w.Robots()
	f.Robots = make([]RobotFrame, len(robots))
	for i, r := range robots {
		f.Robots[i] = RobotFrame{ID: r.ID, X: r.Pos.X, Y: r.Pos.Y, TargetX: r.Target.X, TargetY: r.Target.Y}
	}

	obstacles := w.Obstacles()
	f.Obstacles = make([]ObstacleFrame, len(obstacles))
	for i, ob := range obstacles {
		f.Obstacles[i] = ObstacleFrame{X: ob.Pos.X, Y: ob.Pos.Y, Radius: ob.Radius}
	}
	return f
}
