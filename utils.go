package parsim

import "math"

// clamp32 clamps v to [-limit, limit].
func clamp32(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// sqrt32 is float32 sqrt.
func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// atan232 is float32 atan2.
func atan232(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// sincos32 returns sin and cos of a float32 angle.
func sincos32(a float32) (sin, cos float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

// xorshift32 advances a 32-bit xorshift state. Deterministic, alloc
// free, and fast enough to call from the solver's zero-distance path.
// Mixing constants follow the usual 13/17/5 triple.
func xorshift32(state *uint32) uint32 {
	x := *state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	*state = x
	return x
}

// randAngle draws a uniform angle in [0, 2π).
func randAngle(state *uint32) float32 {
	return float32(xorshift32(state)) * (2 * math.Pi / 4294967296.0)
}
