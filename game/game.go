package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/herd/camera"
	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/telemetry"
	"github.com/pthm-cable/herd/ui"
)

// MaxStepsPerUpdate bounds the speed control.
const MaxStepsPerUpdate = 10

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindow    int    // ticks (0 = use config)
	OutputDir      string // CSV logs and config snapshot (empty = disabled)
	Headless       bool
	StepsPerUpdate int
	OnStep         func(w *World) // called after every tick
}

// Game drives a World, either headless or inside a raylib window.
type Game struct {
	world  *World
	opts   Options
	output *telemetry.OutputManager

	// UI (nil when headless)
	cam      *camera.Camera
	controls *ui.ControlsPanel
	hud      *ui.HUD

	// State
	paused         bool
	stepsPerUpdate int
}

// NewGame creates a game. In graphics mode the raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	w, err := New(cfg, opts.Seed)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := output.WriteConfig(w.Config()); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	w.SetTelemetry(TelemetryOptions{
		StatsWindow: opts.StatsWindow,
		LogStats:    opts.LogStats,
		Output:      output,
	})

	g := &Game{
		world:          w,
		opts:           opts,
		output:         output,
		stepsPerUpdate: min(max(opts.StepsPerUpdate, 1), MaxStepsPerUpdate),
	}
	if opts.Headless {
		// Headless runs are not bounded by the speed control
		g.stepsPerUpdate = max(opts.StepsPerUpdate, 1)
	} else {
		screen := w.Config().Screen
		b := w.Bounds()
		g.cam = camera.New(float32(screen.Width), float32(screen.Height), float32(b.Width), float32(b.Height))
		g.controls = ui.NewControlsPanel(10, 40, 180)
		g.hud = ui.NewHUD()
	}
	return g, nil
}

// World returns the simulated world.
func (g *Game) World() *World {
	return g.world
}

// Tick returns the current simulation tick.
func (g *Game) Tick() uint64 {
	return g.world.Tick()
}

// UpdateHeadless runs stepsPerUpdate ticks without any input handling.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// Update handles input and advances the simulation unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.world.RecordFrame()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

func (g *Game) step() {
	g.world.Step()
	if g.opts.OnStep != nil {
		g.opts.OnStep(g.world)
	}
}

// Reset restarts the world from its config and seed.
func (g *Game) Reset() {
	g.world.Reset()
	slog.Info("world reset", "seed", g.world.Seed())
}

// Unload releases resources and closes output files.
func (g *Game) Unload() {
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
