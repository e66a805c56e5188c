// Package lcg implements the 46-bit linear congruential generator
//
//	x_{k+1} = a * x_k (mod 2^46)
//
// using split-precision float64 arithmetic, so every step is exact on any
// machine with at least 48 mantissa bits and the stream is bit-reproducible.
// The generator has period 2^44 for odd seeds.
package lcg

import (
	"math"

	"github.com/pkg/errors"
)

const (
	r23 = 1.0 / (1 << 23)
	r46 = r23 * r23
	t23 = 1 << 23
	t46 = t23 * t23
)

// ErrInvalidSeed is returned for seeds and multipliers that are not odd
// integers in the open interval (0, 2^46).
var ErrInvalidSeed = errors.New("lcg: value must be an odd integer in (0, 2^46)")

// Validate checks that v can be used as a seed or multiplier.
func Validate(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= t46 || v != math.Trunc(v) || math.Mod(v, 2) != 1 {
		return errors.Wrapf(ErrInvalidSeed, "%v", v)
	}
	return nil
}

// split breaks v into v1, v2 such that v = 2^23*v1 + v2.
func split(v float64) (v1, v2 float64) {
	v1 = math.Trunc(r23 * v)
	v2 = v - t23*v1
	return
}

// next computes a*x mod 2^46 given the split halves of a.
//
// Every intermediate product is below 2^53. The float64 conversions stop the
// compiler from fusing multiply-adds, which would otherwise be allowed to
// round differently.
func next(x, a1, a2 float64) float64 {
	x1, x2 := split(x)

	// z = a1*x2 + a2*x1 (mod 2^23)
	t1 := float64(a1*x2) + float64(a2*x1)
	z := t1 - t23*math.Trunc(r23*t1)

	// x = 2^23*z + a2*x2 (mod 2^46)
	t3 := float64(t23*z) + float64(a2*x2)
	return t3 - t46*math.Trunc(r46*t3)
}

// Step advances the seed x by one step with multiplier a and returns the new
// value normalized to (0, 1), that is 2^-46 * x.
func Step(x *float64, a float64) float64 {
	a1, a2 := split(a)
	*x = next(*x, a1, a2)
	return r46 * *x
}

// Fill writes len(y) consecutive uniforms into y, advancing x past all of
// them. It is equivalent to calling Step len(y) times.
func Fill(x *float64, a float64, y []float64) {
	a1, a2 := split(a)
	s := *x
	for i := range y {
		s = next(s, a1, a2)
		y[i] = r46 * s
	}
	*x = s
}
