package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/config"
)

// orderWorld is a small ark world laid out the way the game spawns entities.
type orderWorld struct {
	w         *ecs.World
	sheepMap  *ecs.Map4[components.Position, components.Velocity, components.Health, components.Sheep]
	predMap   *ecs.Map3[components.Position, components.Velocity, components.Predator]
	robotMap  *ecs.Map3[components.Position, components.Velocity, components.Robot]
	sheepView *ecs.Filter3[components.Position, components.Velocity, components.Health]
	predView  *ecs.Filter1[components.Position]
	robotView *ecs.Filter1[components.Robot]
}

func newOrderWorld() *orderWorld {
	w := ecs.NewWorld()
	return &orderWorld{
		w:        w,
		sheepMap: ecs.NewMap4[components.Position, components.Velocity, components.Health, components.Sheep](w),
		predMap:  ecs.NewMap3[components.Position, components.Velocity, components.Predator](w),
		robotMap: ecs.NewMap3[components.Position, components.Velocity, components.Robot](w),
		sheepView: ecs.NewFilter3[components.Position, components.Velocity, components.Health](w).
			With(ecs.C[components.Sheep]()),
		predView: ecs.NewFilter1[components.Position](w).
			With(ecs.C[components.Predator]()),
		robotView: ecs.NewFilter1[components.Robot](w),
	}
}

func (o *orderWorld) addSheep(pos, vel r2.Vec) {
	o.sheepMap.NewEntity(
		&components.Position{Vec: pos},
		&components.Velocity{Vec: vel},
		&components.Health{Value: 100, Max: 100, Alive: true},
		&components.Sheep{},
	)
}

func (o *orderWorld) addPredator(pos r2.Vec) {
	o.predMap.NewEntity(&components.Position{Vec: pos}, &components.Velocity{}, &components.Predator{})
}

func (o *orderWorld) addRobot(id int, pos r2.Vec) {
	o.robotMap.NewEntity(&components.Position{Vec: pos}, &components.Velocity{}, &components.Robot{ID: id, Target: pos})
}

func (o *orderWorld) sheep() []SheepState {
	var out []SheepState
	q := o.sheepView.Query()
	for q.Next() {
		pos, vel, health := q.Get()
		out = append(out, SheepState{Pos: pos.Vec, Vel: vel.Vec, Alive: health.Alive})
	}
	return out
}

func (o *orderWorld) predators() []r2.Vec {
	return CollectPositions(o.predView, nil)
}

func (o *orderWorld) targets() []r2.Vec {
	var out []r2.Vec
	q := o.robotView.Query()
	for q.Next() {
		out = append(out, q.Get().Target)
	}
	return out
}

func TestFlockingSystemMatchesSnapshotStep(t *testing.T) {
	p := testFlockParams()
	o := newOrderWorld()
	o.addSheep(r2.Vec{X: 200, Y: 200}, r2.Vec{X: 1, Y: 0})
	o.addSheep(r2.Vec{X: 215, Y: 205}, r2.Vec{X: 0, Y: 1})
	o.addSheep(r2.Vec{X: 205, Y: 225}, r2.Vec{X: -0.5, Y: -0.5})
	o.addPredator(r2.Vec{X: 250, Y: 210})

	before := o.sheep()
	preds := o.predators()

	NewFlockingSystem(o.w, p, testBounds).Update(nil)
	after := o.sheep()

	for i := range before {
		want := FlockStep(i, before, nil, preds, nil, &p, testBounds, nil)
		if !near(after[i].Pos, want.Pos, 1e-12) || !near(after[i].Vel, want.Vel, 1e-12) {
			t.Errorf("sheep %d = %v/%v, want snapshot step %v/%v", i, after[i].Pos, after[i].Vel, want.Pos, want.Vel)
		}
	}

	// Updating in place would let sheep 1 see sheep 0's new state
	inPlace := append([]SheepState(nil), before...)
	first := FlockStep(0, inPlace, nil, preds, nil, &p, testBounds, nil)
	inPlace[0].Pos, inPlace[0].Vel = first.Pos, first.Vel
	second := FlockStep(1, inPlace, nil, preds, nil, &p, testBounds, nil)
	if near(after[1].Vel, second.Vel, 1e-9) {
		t.Errorf("sheep 1 velocity %v matches an in-place update", after[1].Vel)
	}
}

func TestDefenseSystemPushesInRobotOrder(t *testing.T) {
	p := DefenseParamsFrom(config.MustDefaults())
	o := newOrderWorld()
	robots := []r2.Vec{{X: 300, Y: 300}, {X: 300, Y: 320}}
	for i, pos := range robots {
		o.addRobot(i, pos)
	}
	pred := r2.Vec{X: 320, Y: 310}
	o.addPredator(pred)

	var events TickEvents
	NewDefenseSystem(o.w, p, testBounds).Update(&events)

	if events.Pushes != 2 {
		t.Fatalf("pushes = %d, want 2", events.Pushes)
	}

	seq := []r2.Vec{pred}
	total := 0
	for _, r := range robots {
		_, _, n := DefendStep(r, r, seq, nil, &p, testBounds)
		total += n
	}
	if total != 2 {
		t.Fatalf("sequential pushes = %d, want 2", total)
	}

	got := o.predators()[0]
	if got != seq[0] {
		t.Errorf("predator = %v, want both pushes applied in order %v", got, seq[0])
	}

	// Both pushes measured from the original position land elsewhere
	independent := pred
	for _, r := range robots {
		independent = r2.Sub(independent, r2.Scale(p.PushStrength, SafeNormalize(r2.Sub(r, pred))))
	}
	if near(got, independent, 1e-12) {
		t.Errorf("predator %v matches pushes measured from the start position", got)
	}
}

func TestFormationUsesPositionsBeforeMovement(t *testing.T) {
	cfg := config.MustDefaults()
	o := newOrderWorld()
	o.addSheep(r2.Vec{X: 200, Y: 200}, r2.Vec{X: 1, Y: 0})
	o.addSheep(r2.Vec{X: 220, Y: 210}, r2.Vec{X: 1, Y: 0.5})
	o.addPredator(r2.Vec{X: 320, Y: 205})
	o.addRobot(0, r2.Vec{X: 400, Y: 180})
	o.addRobot(1, r2.Vec{X: 400, Y: 230})

	angle, spacing := cfg.Derived.FormationAngleRad, cfg.Formation.Spacing
	centroid, _ := Centroid(o.sheep())
	want := AssignVFormation(2, centroid, o.predators()[0], angle, spacing)

	formation := NewFormationSystem(o.w, angle, spacing)
	flocking := NewFlockingSystem(o.w, FlockParamsFrom(cfg), testBounds)
	pursuit := NewPursuitSystem(o.w, PursuitParamsFrom(cfg), testBounds)
	defense := NewDefenseSystem(o.w, DefenseParamsFrom(cfg), testBounds)

	var events TickEvents
	formation.Update()
	flocking.Update(nil)
	pursuit.Update(&events)
	defense.Update(&events)

	got := o.targets()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("robot %d target = %v, want %v", i, got[i], want[i])
		}
	}

	moved, _ := Centroid(o.sheep())
	late := AssignVFormation(2, moved, o.predators()[0], angle, spacing)
	if near(got[0], late[0], 1e-9) && near(got[1], late[1], 1e-9) {
		t.Error("targets match positions after movement")
	}
}
