package systems

import "gonum.org/v1/gonum/spatial/r2"

// Bounds represents the simulation bounds. Positions live in [0,Width]x[0,Height].
type Bounds struct {
	Width, Height float64
}

// Clamp moves p onto the nearest point inside the bounds.
func (b Bounds) Clamp(p r2.Vec) r2.Vec {
	return r2.Vec{X: clampFloat(p.X, 0, b.Width), Y: clampFloat(p.Y, 0, b.Height)}
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p r2.Vec) bool {
	return p.X >= 0 && p.X <= b.Width && p.Y >= 0 && p.Y <= b.Height
}

// Integrate advances p by v and clamps the result to the bounds.
func (b Bounds) Integrate(p, v r2.Vec) r2.Vec {
	return b.Clamp(r2.Add(p, v))
}

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
