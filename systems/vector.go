package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// LimitVector returns v unchanged if |v| <= max, else v scaled to length max.
// A scaled result is never longer than max, so limiting again returns it
// unchanged. The zero vector is returned unchanged.
func LimitVector(v r2.Vec, max float64) r2.Vec {
	mag := r2.Norm(v)
	if mag == 0 || mag <= max {
		return v
	}
	if max <= 0 {
		return r2.Vec{}
	}
	f := max / mag
	out := r2.Scale(f, v)
	// Rounding can leave the product an ulp long
	for r2.Norm(out) > max {
		f = math.Nextafter(f, 0)
		out = r2.Scale(f, v)
	}
	return out
}

// SafeNormalize returns the unit vector along v, or the zero vector when v is zero.
func SafeNormalize(v r2.Vec) r2.Vec {
	mag := r2.Norm(v)
	if mag == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/mag, v)
}

// unitFromAngle returns the unit vector with the given heading in radians.
func unitFromAngle(theta float64) r2.Vec {
	sin, cos := math.Sincos(theta)
	return r2.Vec{X: cos, Y: sin}
}

// distance returns the Euclidean distance between two points.
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
