package game

import (
	"errors"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/telemetry"
)

// layoutConfig returns defaults with every kind placed explicitly. An empty
// list with a zero population leaves that kind out.
func layoutConfig(sheep, predators, robots, obstacles []config.Point) *config.Config {
	cfg := config.MustDefaults()
	cfg.Population = config.PopulationConfig{}
	cfg.Layout = config.LayoutConfig{
		Sheep:     sheep,
		Predators: predators,
		Robots:    robots,
		Obstacles: obstacles,
	}
	cfg.ComputeDerived()
	return cfg
}

func mustWorld(t *testing.T, cfg *config.Config, seed int64) *World {
	t.Helper()
	w, err := New(cfg, seed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func assertInBounds(t *testing.T, w *World) {
	t.Helper()
	b := w.Bounds()
	check := func(kind string, i int, p r2.Vec) {
		if !b.Contains(p) {
			t.Fatalf("tick %d: %s %d at (%.3f, %.3f) outside %vx%v",
				w.Tick(), kind, i, p.X, p.Y, b.Width, b.Height)
		}
	}
	for i, s := range w.Sheep() {
		check("sheep", i, s.Pos)
	}
	for i, p := range w.Predators() {
		check("predator", i, p)
	}
	for i, r := range w.Robots() {
		check("robot", i, r.Pos)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(nil, 1); err == nil {
		t.Error("nil config accepted")
	}

	cfg := config.MustDefaults()
	cfg.Sheep.MaxSpeed = -1
	_, err := New(cfg, 1)
	if err == nil {
		t.Fatal("negative max speed accepted")
	}
	var fe *config.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v does not wrap a *config.FieldError", err)
	}
	if fe.Field != "sheep.max_speed" {
		t.Errorf("field = %q, want sheep.max_speed", fe.Field)
	}
}

func TestNewDoesNotAliasConfig(t *testing.T) {
	cfg := config.MustDefaults()
	w := mustWorld(t, cfg, 1)
	cfg.Sheep.MaxSpeed = 99
	if w.Config().Sheep.MaxSpeed == 99 {
		t.Error("world shares the caller's config")
	}
}

func TestInitialPopulation(t *testing.T) {
	w := mustWorld(t, config.MustDefaults(), 7)

	sheep := w.Sheep()
	if len(sheep) != 30 || w.LiveSheep() != 30 || w.TotalSheep() != 30 {
		t.Fatalf("sheep = %d live=%d total=%d, want 30", len(sheep), w.LiveSheep(), w.TotalSheep())
	}
	b := w.Bounds()
	for i, s := range sheep {
		if s.Pos.X < b.Width/3 || s.Pos.X > 2*b.Width/3 || s.Pos.Y < b.Height/3 || s.Pos.Y > 2*b.Height/3 {
			t.Errorf("sheep %d at %v outside the middle third", i, s.Pos)
		}
		if s.HealthRatio() != 1 || !s.Alive {
			t.Errorf("sheep %d starts with ratio %v alive=%v", i, s.HealthRatio(), s.Alive)
		}
	}

	robots := w.Robots()
	if len(robots) != 5 {
		t.Fatalf("robots = %d, want 5", len(robots))
	}
	for i, r := range robots {
		if r.ID != i {
			t.Errorf("robot %d has id %d", i, r.ID)
		}
		if r.Target != r.Pos {
			t.Errorf("robot %d target %v, want its spawn position %v", i, r.Target, r.Pos)
		}
	}

	avoid := w.Config().Obstacle.AvoidRadius
	for i, ob := range w.Obstacles() {
		if ob.Pos.X < avoid || ob.Pos.X > b.Width-avoid || ob.Pos.Y < avoid || ob.Pos.Y > b.Height-avoid {
			t.Errorf("obstacle %d at %v closer than %v to an edge", i, ob.Pos, avoid)
		}
	}
	if len(w.Predators()) != 1 {
		t.Errorf("predators = %d, want 1", len(w.Predators()))
	}
}

func TestPositionsStayInBounds(t *testing.T) {
	w := mustWorld(t, config.MustDefaults(), 3)
	for i := 0; i < 500; i++ {
		w.Step()
		assertInBounds(t, w)
	}
}

func TestPredationKill(t *testing.T) {
	cfg := layoutConfig(
		[]config.Point{{X: 400, Y: 300}},
		[]config.Point{{X: 405, Y: 300}},
		nil, nil,
	)
	cfg.Sheep.MaxHealth = cfg.Predator.Damage
	w := mustWorld(t, cfg, 1)

	w.Step()

	ev := w.LastEvents()
	if ev.Bites != 1 {
		t.Errorf("bites = %d, want 1", ev.Bites)
	}
	if len(ev.Kills) != 1 || ev.Kills[0].Sheep != 0 {
		t.Fatalf("kills = %+v, want sheep 0", ev.Kills)
	}
	if w.LiveSheep() != 0 {
		t.Errorf("live sheep = %d, want 0", w.LiveSheep())
	}
	s := w.Sheep()[0]
	if s.Alive || s.Health != 0 {
		t.Errorf("sheep alive=%v health=%v, want dead at 0", s.Alive, s.Health)
	}

	// A dead sheep is frozen and the predator has nothing left to chase
	pred := w.Predators()[0]
	w.Step()
	if got := w.Sheep()[0].Pos; got != s.Pos {
		t.Errorf("dead sheep moved from %v to %v", s.Pos, got)
	}
	if got := w.Predators()[0]; got != pred {
		t.Errorf("predator moved from %v to %v with no live prey", pred, got)
	}
	if w.LastEvents().Bites != 0 {
		t.Error("dead sheep bitten")
	}
}

func TestNoOpTick(t *testing.T) {
	cfg := layoutConfig(nil, []config.Point{{X: 100, Y: 100}}, nil, nil)
	w := mustWorld(t, cfg, 1)

	for i := 0; i < 10; i++ {
		w.Step()
	}
	if got := w.Predators()[0]; got != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("predator at %v, want (100, 100)", got)
	}
	if len(w.Sheep()) != 0 || len(w.Robots()) != 0 {
		t.Error("agents appeared in an empty world")
	}
	if w.Tick() != 10 {
		t.Errorf("tick = %d, want 10", w.Tick())
	}
	if _, ok := w.Centroid(); ok {
		t.Error("centroid reported with no sheep")
	}
}

func TestFormationKeepsTargetsWithoutPredator(t *testing.T) {
	cfg := layoutConfig(
		[]config.Point{{X: 400, Y: 300}},
		nil,
		[]config.Point{{X: 100, Y: 100}, {X: 120, Y: 100}},
		nil,
	)
	w := mustWorld(t, cfg, 1)
	w.Step()

	for _, r := range w.Robots() {
		if r.Target != r.Pos {
			t.Errorf("robot %d target %v, want unchanged %v", r.ID, r.Target, r.Pos)
		}
	}
}

func TestFormationTargetsRelativeToCentroid(t *testing.T) {
	cfg := layoutConfig(
		[]config.Point{{X: 400, Y: 300}},
		[]config.Point{{X: 100, Y: 300}},
		[]config.Point{{X: 600, Y: 500}, {X: 600, Y: 100}},
		nil,
	)
	w := mustWorld(t, cfg, 1)
	w.Step()

	robots := w.Robots()
	centroid, ok := w.Centroid()
	if !ok {
		t.Fatal("no centroid")
	}
	// Two robots: one at the apex on the centroid, one a spacing away on the left arm
	apex := robots[1].Target
	if r2.Norm(r2.Sub(apex, centroid)) > 2 {
		t.Errorf("apex target %v not near centroid %v", apex, centroid)
	}
	d := r2.Norm(r2.Sub(robots[0].Target, apex))
	if diff := d - w.Config().Formation.Spacing; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("arm slot %v from apex, want %v", d, w.Config().Formation.Spacing)
	}
}

func TestDeterministicForSeed(t *testing.T) {
	a := mustWorld(t, config.MustDefaults(), 42)
	b := mustWorld(t, config.MustDefaults(), 42)
	for i := 0; i < 300; i++ {
		a.Step()
		b.Step()
	}
	if !reflect.DeepEqual(a.Sheep(), b.Sheep()) {
		t.Error("sheep diverged for equal seeds")
	}
	if !reflect.DeepEqual(a.Predators(), b.Predators()) {
		t.Error("predators diverged for equal seeds")
	}
	if !reflect.DeepEqual(a.Robots(), b.Robots()) {
		t.Error("robots diverged for equal seeds")
	}

	c := mustWorld(t, config.MustDefaults(), 43)
	d := mustWorld(t, config.MustDefaults(), 42)
	if reflect.DeepEqual(c.Sheep(), d.Sheep()) {
		t.Error("different seeds produced identical flocks")
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	w := mustWorld(t, config.MustDefaults(), 9)
	initial := w.Sheep()
	for i := 0; i < 100; i++ {
		w.Step()
	}
	w.Reset()

	if w.Tick() != 0 {
		t.Errorf("tick = %d after reset", w.Tick())
	}
	if w.LiveSheep() != w.TotalSheep() {
		t.Errorf("live %d != total %d after reset", w.LiveSheep(), w.TotalSheep())
	}
	if !reflect.DeepEqual(initial, w.Sheep()) {
		t.Error("reset did not reproduce the initial flock")
	}
}

func TestEndToEndChase(t *testing.T) {
	cfg := layoutConfig(
		[]config.Point{{X: 100, Y: 300}, {X: 105, Y: 300}, {X: 102.5, Y: 304.33}},
		[]config.Point{{X: 400, Y: 300}},
		[]config.Point{{X: 600, Y: 300}, {X: 600, Y: 310}},
		[]config.Point{{X: 700, Y: 80}},
	)
	w := mustWorld(t, cfg, 1)

	pushes := 0
	var windows []telemetry.WindowStats
	w.SetTelemetry(TelemetryOptions{
		StatsWindow: 100,
		OnStats:     func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	decreased := false
	prev := w.LiveSheep()
	for i := 0; i < 1000; i++ {
		w.Step()
		assertInBounds(t, w)
		pushes += w.LastEvents().Pushes
		if w.LiveSheep() < prev {
			decreased = true
		}
		prev = w.LiveSheep()
	}

	if !decreased && w.LiveSheep() != 0 {
		t.Errorf("no sheep lost in 1000 ticks (live=%d)", w.LiveSheep())
	}
	if pushes == 0 {
		t.Error("robots never pushed the predator")
	}
	if len(windows) != 10 {
		t.Fatalf("windows = %d, want 10", len(windows))
	}
	kills := 0
	for _, s := range windows {
		kills += s.Kills
	}
	if kills != w.TotalSheep()-w.LiveSheep() {
		t.Errorf("window kills = %d, want %d", kills, w.TotalSheep()-w.LiveSheep())
	}
}
