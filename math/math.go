// math/math.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"cmp"

	gomath "math"
)

// Scalar helpers for float32 values; the Go standard library math package
// is float64-only, so wrap the handful of functions used by the guidance
// code rather than sprinkling conversions at every call site.

const Pi = float32(gomath.Pi)

// FeetPerNauticalMile is the conversion used for descent-gradient math.
const FeetPerNauticalMile = 6076.12

func Radians(d float32) float32 {
	return d / 180 * Pi
}

func Degrees(r float32) float32 {
	return r / Pi * 180
}

func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func Sign(x float32) float32 {
	if x < 0 {
		return -1
	} else if x > 0 {
		return 1
	}
	return 0
}

func Sqr(x float32) float32 { return x * x }

func Clamp[T cmp.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Linearly interpolate x of the way between a and b.
func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}

func Sqrt(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

func Sin(x float32) float32 {
	return float32(gomath.Sin(float64(x)))
}

func Cos(x float32) float32 {
	return float32(gomath.Cos(float64(x)))
}

func Tan(x float32) float32 {
	return float32(gomath.Tan(float64(x)))
}

func Atan2(y, x float32) float32 {
	return float32(gomath.Atan2(float64(y), float64(x)))
}

// SafeASin clamps its argument to [-1,1] so that accumulated floating
// point error can never produce a NaN.
func SafeASin(a float32) float32 {
	return float32(gomath.Asin(float64(Clamp(a, -1, 1))))
}

func SafeACos(a float32) float32 {
	return float32(gomath.Acos(float64(Clamp(a, -1, 1))))
}

// IsNaN32 reports whether x is an IEEE NaN.
func IsNaN32(x float32) bool {
	return x != x
}

// IsInf32 reports whether x is an infinity.
func IsInf32(x float32) bool {
	return gomath.IsInf(float64(x), 0)
}
