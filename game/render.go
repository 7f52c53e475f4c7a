package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/ui"
)

// Colors
var (
	colorBackground = rl.Color{R: 0, G: 128, B: 0, A: 255}
	colorSheep      = rl.Color{R: 255, G: 250, B: 240, A: 255}
	colorPredator   = rl.Color{R: 255, G: 0, B: 0, A: 255}
	colorRobot      = rl.Color{R: 0, G: 0, B: 0, A: 255}
	colorTarget     = rl.Color{R: 0, G: 0, B: 0, A: 90}
	colorObstacle   = rl.Color{R: 100, G: 100, B: 100, A: 255}
)

// Agent radii in world units
const (
	sheepRadius    = 5
	predatorRadius = 7
	robotRadius    = 6
)

// Draw renders the world, the HUD and the controls panel.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(colorBackground)
	g.drawWorld()

	w := g.world
	g.hud.Draw(ui.HUDData{
		LiveSheep:      w.LiveSheep(),
		TotalSheep:     w.TotalSheep(),
		Tick:           w.Tick(),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
	})

	actions := g.controls.Draw(ui.ControlsState{
		Paused:         g.paused,
		StepsPerUpdate: g.stepsPerUpdate,
		MaxSteps:       MaxStepsPerUpdate,
	})
	g.applyControls(actions)

	g.hud.DrawControls(int32(rl.GetScreenHeight()), "[Space] Pause  [,/.] Speed  [R] Reset  [H] Panel  [Wheel/RMB] Camera  [C] Recenter")
}

// applyControls applies the panel's requested changes.
func (g *Game) applyControls(a ui.ControlsActions) {
	if a.TogglePause {
		g.paused = !g.paused
	}
	if a.Reset {
		g.Reset()
	}
	if a.StepsPerUpdate > 0 {
		g.stepsPerUpdate = a.StepsPerUpdate
	}
}

// drawWorld draws obstacles, live sheep with health bars, the predators, and
// robots with their formation targets.
func (g *Game) drawWorld() {
	w := g.world
	cam := g.cam

	for _, ob := range w.Obstacles() {
		g.drawCircle(ob.Pos, float32(ob.Radius), colorObstacle)
	}

	for _, s := range w.Sheep() {
		if !s.Alive || !cam.IsVisible(float32(s.Pos.X), float32(s.Pos.Y), 10) {
			continue
		}
		g.drawCircle(s.Pos, sheepRadius, colorSheep)
		sx, sy := cam.WorldToScreen(float32(s.Pos.X), float32(s.Pos.Y))
		ui.DrawHealthBar(int32(sx)-10, int32(sy)-10, 20, 3, float32(s.HealthRatio()))
	}

	for _, p := range w.Predators() {
		g.drawCircle(p, predatorRadius, colorPredator)
	}

	for _, r := range w.Robots() {
		tx, ty := cam.WorldToScreen(float32(r.Target.X), float32(r.Target.Y))
		rl.DrawCircleLines(int32(tx), int32(ty), cam.ScaleLength(robotRadius), colorTarget)
		g.drawCircle(r.Pos, robotRadius, colorRobot)
	}
}

// drawCircle draws a filled circle given in world units.
func (g *Game) drawCircle(p r2.Vec, radius float32, color rl.Color) {
	if !g.cam.IsVisible(float32(p.X), float32(p.Y), radius) {
		return
	}
	sx, sy := g.cam.WorldToScreen(float32(p.X), float32(p.Y))
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, g.cam.ScaleLength(radius), color)
}
