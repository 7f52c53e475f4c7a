package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is the game state shown by the controls panel.
type ControlsState struct {
	Paused         bool
	StepsPerUpdate int
	MaxSteps       int
}

// ControlsActions are the changes requested through the panel in one frame.
type ControlsActions struct {
	TogglePause    bool
	Reset          bool
	StepsPerUpdate int // 0 = unchanged
}

// ControlsPanel renders the pause, reset and speed controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and reports what the user clicked.
func (c *ControlsPanel) Draw(state ControlsState) ControlsActions {
	var actions ControlsActions
	if !c.visible {
		return actions
	}

	r := c.renderer
	padding := r.Theme.Padding
	buttonH := r.Theme.ButtonHeight
	innerW := c.width - padding*2

	panelHeight := padding*2 + r.Theme.LineHeight + 4 + (buttonH+6)*2 + r.Theme.LineHeight + 20
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	y := r.DrawSectionHeader(x, c.y+padding, "Controls")

	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rect(x, y, innerW, buttonH), pauseLabel) {
		actions.TogglePause = true
	}
	y += buttonH + 6

	if gui.Button(rect(x, y, innerW, buttonH), "Reset") {
		actions.Reset = true
	}
	y += buttonH + 6

	r.DrawLabel(x, y, "Steps per frame")
	r.DrawValue(x+innerW-20, y, fmt.Sprintf("%d", state.StepsPerUpdate))
	y += r.Theme.LineHeight

	v := gui.SliderBar(rect(x, y, innerW, 16), "", "",
		float32(state.StepsPerUpdate), 1, float32(max(state.MaxSteps, 1)))
	if steps := SliderSteps(v, state.MaxSteps); steps != state.StepsPerUpdate {
		actions.StepsPerUpdate = steps
	}

	return actions
}

// SliderSteps rounds a slider value to a step count in [1, maxSteps].
func SliderSteps(v float32, maxSteps int) int {
	n := int(math.Round(float64(v)))
	return min(max(n, 1), max(maxSteps, 1))
}

func rect(x, y, w, h int32) rl.Rectangle {
	return rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h)}
}
