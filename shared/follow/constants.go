package follow

import "math"

const pi = float32(math.Pi)

// stabilityMargin scales the smallest k2 that keeps the step bounded.
const stabilityMargin float32 = 1.1

// Constants are the integration coefficients derived from a Tuning.
type Constants struct {
	K1 float32 // velocity damping term
	K2 float32 // inverse stiffness
	K3 float32 // target-velocity feed-forward
}

// Derive converts tuning parameters into integration constants. It is a pure
// function; the caller is responsible for validating t first.
func Derive(t Tuning) Constants {
	w := 2 * pi * t.Frequency
	return Constants{
		K1: t.Damping / (pi * t.Frequency),
		K2: 1 / (w * w),
		K3: t.Response * t.Damping / w,
	}
}

// Stable returns the k2 to use for a step of length dt. It is raised above
// the stored K2 when dt is large relative to the spring period; K2 itself is
// never modified.
func (c Constants) Stable(dt float32) float32 {
	floor := stabilityMargin * (dt*dt/4 + dt*c.K1/2)
	return max(c.K2, floor)
}
