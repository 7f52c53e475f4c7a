package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/config"
)

var testBounds = Bounds{Width: 800, Height: 600}

func testFlockParams() FlockParams {
	return FlockParamsFrom(config.MustDefaults())
}

func TestFlockStepPanicRaisesSpeedCap(t *testing.T) {
	p := testFlockParams()
	flock := []SheepState{{Pos: r2.Vec{X: 200, Y: 200}, Vel: r2.Vec{X: 3, Y: 0}, Alive: true}}
	rng := rand.New(rand.NewSource(1))

	const eps = 1e-6
	pred := []r2.Vec{{X: 200 + p.PanicRadius - eps, Y: 200}}
	res := FlockStep(0, flock, nil, pred, nil, &p, testBounds, rng)

	if !res.Panicking {
		t.Fatal("sheep inside panic radius is not panicking")
	}
	want := p.MaxSpeed * p.PanicSpeedFactor
	if got := r2.Norm(res.Vel); math.Abs(got-want) > 1e-9 {
		t.Errorf("panicking speed = %v, want cap %v", got, want)
	}
}

func TestFlockStepCalmSpeedCap(t *testing.T) {
	p := testFlockParams()
	flock := []SheepState{{Pos: r2.Vec{X: 200, Y: 200}, Vel: r2.Vec{X: 3, Y: 0}, Alive: true}}

	pred := []r2.Vec{{X: 200 + p.PanicRadius + 1e-6, Y: 200}}
	res := FlockStep(0, flock, nil, pred, nil, &p, testBounds, nil)

	if res.Panicking {
		t.Fatal("sheep outside panic radius is panicking")
	}
	if got := r2.Norm(res.Vel); math.Abs(got-p.MaxSpeed) > 1e-9 {
		t.Errorf("calm speed = %v, want cap %v", got, p.MaxSpeed)
	}
}

func TestFlockStepDeadSheepUnchanged(t *testing.T) {
	p := testFlockParams()
	flock := []SheepState{
		{Pos: r2.Vec{X: 10, Y: 10}, Vel: r2.Vec{X: 1, Y: 0}, Alive: false},
		{Pos: r2.Vec{X: 12, Y: 10}, Vel: r2.Vec{X: 0, Y: 1}, Alive: true},
	}
	res := FlockStep(0, flock, nil, []r2.Vec{{X: 11, Y: 10}}, nil, &p, testBounds, nil)
	if res.Pos != flock[0].Pos || res.Vel != flock[0].Vel || res.Panicking {
		t.Errorf("dead sheep changed: %+v", res)
	}
}

func TestFlockStepIgnoresDeadNeighbors(t *testing.T) {
	p := testFlockParams()
	alone := []SheepState{{Pos: r2.Vec{X: 100, Y: 100}, Vel: r2.Vec{X: 0.5, Y: 0}, Alive: true}}
	withCorpse := append([]SheepState{}, alone...)
	withCorpse = append(withCorpse, SheepState{Pos: r2.Vec{X: 105, Y: 100}, Vel: r2.Vec{X: -1, Y: 1}, Alive: false})

	a := FlockStep(0, alone, nil, nil, nil, &p, testBounds, nil)
	b := FlockStep(0, withCorpse, nil, nil, nil, &p, testBounds, nil)
	if a != b {
		t.Errorf("dead neighbor influenced the result: %+v vs %+v", a, b)
	}
}

func TestFlockStepSeparation(t *testing.T) {
	p := testFlockParams()
	p.AlignmentWeight = 0
	p.CohesionWeight = 0
	flock := []SheepState{
		{Pos: r2.Vec{X: 100, Y: 100}, Alive: true},
		{Pos: r2.Vec{X: 110, Y: 100}, Alive: true},
	}
	res := FlockStep(0, flock, nil, nil, nil, &p, testBounds, nil)
	if res.Vel.X >= 0 {
		t.Errorf("velocity %v does not point away from close neighbor", res.Vel)
	}
}

func TestFlockStepAvoidsObstacle(t *testing.T) {
	p := testFlockParams()
	flock := []SheepState{{Pos: r2.Vec{X: 100, Y: 100}, Alive: true}}
	obstacles := []ObstacleState{{Pos: r2.Vec{X: 100, Y: 120}, Radius: 20}}

	res := FlockStep(0, flock, nil, nil, obstacles, &p, testBounds, nil)
	if res.Vel.Y >= 0 {
		t.Errorf("velocity %v does not point away from obstacle", res.Vel)
	}
}

func TestFlockStepGridMatchesFullScan(t *testing.T) {
	p := testFlockParams()
	rng := rand.New(rand.NewSource(11))
	flock := make([]SheepState, 60)
	grid := NewSpatialGrid(testBounds.Width, testBounds.Height, p.NeighborRadius)
	for i := range flock {
		flock[i] = SheepState{
			Pos:   r2.Vec{X: 300 + rng.Float64()*200, Y: 200 + rng.Float64()*200},
			Vel:   unitFromAngle(rng.Float64() * 2 * math.Pi),
			Alive: i%7 != 0,
		}
		if flock[i].Alive {
			grid.Insert(i, flock[i].Pos)
		}
	}

	var candidates []int
	for i := range flock {
		candidates = grid.QueryInto(candidates[:0], flock[i].Pos, p.NeighborRadius)
		full := FlockStep(i, flock, nil, nil, nil, &p, testBounds, nil)
		fast := FlockStep(i, flock, candidates, nil, nil, &p, testBounds, nil)
		if full != fast {
			t.Fatalf("sheep %d: grid result %+v differs from full scan %+v", i, fast, full)
		}
	}
}

func TestFlockStepStaysInBounds(t *testing.T) {
	p := testFlockParams()
	flock := []SheepState{{Pos: r2.Vec{X: 0.2, Y: 599.9}, Vel: r2.Vec{X: -1, Y: 1}, Alive: true}}
	res := FlockStep(0, flock, nil, nil, nil, &p, testBounds, nil)
	if !testBounds.Contains(res.Pos) {
		t.Errorf("position %v left bounds", res.Pos)
	}
}
