// math/heading.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

// Utility functions for headings and courses, all in degrees.

// NormalizeHeading returns the heading reduced to the range [0, 360).
func NormalizeHeading(h float32) float32 {
	h = float32(gomath.Mod(float64(h), 360))
	if h < 0 {
		h += 360
	}
	return h
}

// OppositeHeading returns the reciprocal of the given heading.
func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// HeadingDifference returns the minimum angular distance between two
// headings, in [0, 180].
func HeadingDifference(a float32, b float32) float32 {
	var d float32
	a, b = NormalizeHeading(a), NormalizeHeading(b)
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HeadingSignedTurn returns the signed shortest-way turn from the heading
// "from" to the heading "to"; negative values indicate a left turn.
func HeadingSignedTurn(from, to float32) float32 {
	d := NormalizeHeading(to) - NormalizeHeading(from)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// IsHeadingBetween reports whether the heading h lies inside the arc swept
// clockwise from h1 to h2, inclusive at both ends.
func IsHeadingBetween(h, h1, h2 float32) bool {
	h, h1, h2 = NormalizeHeading(h), NormalizeHeading(h1), NormalizeHeading(h2)
	if h1 <= h2 {
		return h >= h1 && h <= h2
	}
	// The arc wraps through 360.
	return h >= h1 || h <= h2
}
