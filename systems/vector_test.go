package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestLimitVector(t *testing.T) {
	tests := []struct {
		name string
		v    r2.Vec
		max  float64
		want r2.Vec
	}{
		{"zero vector", r2.Vec{}, 1, r2.Vec{}},
		{"below max unchanged", r2.Vec{X: 0.3, Y: 0.4}, 1, r2.Vec{X: 0.3, Y: 0.4}},
		{"exactly max unchanged", r2.Vec{X: 3, Y: 4}, 5, r2.Vec{X: 3, Y: 4}},
		{"scaled down", r2.Vec{X: 6, Y: 8}, 5, r2.Vec{X: 3, Y: 4}},
		{"zero max", r2.Vec{X: 1, Y: 1}, 0, r2.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LimitVector(tt.v, tt.max)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("LimitVector(%v, %v) = %v, want %v", tt.v, tt.max, got, tt.want)
			}
		})
	}
}

func TestLimitVectorBoundAndIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := r2.Vec{X: rng.NormFloat64() * 5, Y: rng.NormFloat64() * 5}
		m := rng.Float64() * 4

		got := LimitVector(v, m)
		if r2.Norm(got) > m {
			t.Fatalf("|LimitVector(%v, %v)| = %v exceeds max", v, m, r2.Norm(got))
		}
		if r2.Norm(v) <= m && got != v {
			t.Fatalf("LimitVector(%v, %v) = %v, want v unchanged", v, m, got)
		}
		if again := LimitVector(got, m); again != got {
			t.Fatalf("re-limiting drifted: %v -> %v", got, again)
		}
	}
}

func TestLimitVectorJustOverMax(t *testing.T) {
	// Slightly longer than max must still be scaled, never left over the limit
	for _, m := range []float64{5 * (1 - 1e-13), 5 * (1 - 1e-15), math.Nextafter(5, 0)} {
		v := r2.Vec{X: 3, Y: 4}
		got := LimitVector(v, m)
		if got == v {
			t.Errorf("LimitVector(%v, %v) left v unchanged", v, m)
		}
		if n := r2.Norm(got); n > m {
			t.Errorf("|LimitVector(%v, %v)| = %v exceeds max", v, m, n)
		}
		if math.Abs(r2.Norm(got)-m) > 1e-12 {
			t.Errorf("|LimitVector(%v, %v)| = %v, want %v", v, m, r2.Norm(got), m)
		}
	}
}

func TestSafeNormalize(t *testing.T) {
	if got := SafeNormalize(r2.Vec{}); got != (r2.Vec{}) {
		t.Errorf("SafeNormalize(0) = %v, want zero", got)
	}
	got := SafeNormalize(r2.Vec{X: 0, Y: -7})
	if math.Abs(got.X) > 1e-12 || math.Abs(got.Y+1) > 1e-12 {
		t.Errorf("SafeNormalize((0,-7)) = %v, want (0,-1)", got)
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{Width: 800, Height: 600}
	tests := []struct {
		in, want r2.Vec
	}{
		{r2.Vec{X: -5, Y: 10}, r2.Vec{X: 0, Y: 10}},
		{r2.Vec{X: 900, Y: 700}, r2.Vec{X: 800, Y: 600}},
		{r2.Vec{X: 400, Y: -1}, r2.Vec{X: 400, Y: 0}},
		{r2.Vec{X: 12, Y: 34}, r2.Vec{X: 12, Y: 34}},
	}
	for _, tt := range tests {
		if got := b.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if !b.Contains(b.Clamp(tt.in)) {
			t.Errorf("Clamp(%v) not contained", tt.in)
		}
	}
}
