package game

import rl "github.com/gen2brain/raylib-go/raylib"

const zoomStep = 1.1

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < MaxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}

	if rl.IsKeyPressed(rl.KeyH) {
		g.controls.Toggle()
	}

	// Camera: wheel zooms, right drag pans, C recenters
	g.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	if wheel := rl.GetMouseWheelMove(); wheel > 0 {
		g.cam.ZoomBy(zoomStep)
	} else if wheel < 0 {
		g.cam.ZoomBy(1 / zoomStep)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.cam.Pan(-d.X, -d.Y)
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.cam.Reset()
	}
}
