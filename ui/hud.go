package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	LiveSheep      int
	TotalSheep     int
	Tick           uint64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// SheepRemainingText is the headline HUD string.
func SheepRemainingText(live int) string {
	return fmt.Sprintf("Sheep Remaining: %d", live)
}

// StatusText summarizes the run state.
func StatusText(data HUDData) string {
	state := "Running"
	if data.Paused {
		state = "PAUSED"
	}
	return fmt.Sprintf("%s | Tick: %d | Speed: %dx | FPS: %d", state, data.Tick, data.StepsPerUpdate, data.FPS)
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	t := h.renderer.Theme
	rl.DrawText(SheepRemainingText(data.LiveSheep), 10, 10, t.HUDFontSize, t.TextColor)
	rl.DrawText(StatusText(data), 250, 14, t.FontSize+2, t.StatusColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, h.renderer.Theme.LegendColor)
}
