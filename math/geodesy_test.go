// math/geodesy_test.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/require"
)

const metersPerNM = 1852

func TestNMDistance2LL(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point2LL
		expected float32 // nm
		tol      float32
	}{
		{"coincident", MakePoint2LL(40, -73), MakePoint2LL(40, -73), 0, 0},
		{"one degree latitude", MakePoint2LL(40, -73), MakePoint2LL(41, -73), 60.0, 0.1},
		{"JFK to LAX", MakePoint2LL(40.6399, -73.7787), MakePoint2LL(33.9425, -118.4081), 2151, 8},
		{"short hop", MakePoint2LL(40, -73), MakePoint2LL(40.01, -73.01), 0.756, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NMDistance2LL(tt.a, tt.b)
			if Abs(d-tt.expected) > tt.tol {
				t.Errorf("NMDistance2LL(%v, %v) = %f, expected %f", tt.a, tt.b, d, tt.expected)
			}
			// Symmetric
			if dr := NMDistance2LL(tt.b, tt.a); dr != d {
				t.Errorf("distance not symmetric: %f vs %f", d, dr)
			}
		})
	}
}

func TestGreatCircleHeading(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point2LL
		expected float32
		tol      float32
	}{
		{"north", MakePoint2LL(40, -73), MakePoint2LL(41, -73), 0, 0.1},
		{"south", MakePoint2LL(41, -73), MakePoint2LL(40, -73), 180, 0.1},
		{"east at equator", MakePoint2LL(0, 0), MakePoint2LL(0, 1), 90, 0.1},
		{"west at equator", MakePoint2LL(0, 1), MakePoint2LL(0, 0), 270, 0.1},
		{"coincident is stable", MakePoint2LL(40, -73), MakePoint2LL(40, -73), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := GreatCircleHeading(tt.a, tt.b)
			if IsNaN32(h) {
				t.Fatalf("GreatCircleHeading(%v, %v) = NaN", tt.a, tt.b)
			}
			if HeadingDifference(h, tt.expected) > tt.tol {
				t.Errorf("GreatCircleHeading(%v, %v) = %f, expected %f", tt.a, tt.b, h, tt.expected)
			}
		})
	}
}

func TestAntipodalNoNaN(t *testing.T) {
	a, b := MakePoint2LL(0, 0), MakePoint2LL(0, 180)
	d := NMDistance2LL(a, b)
	require.False(t, IsNaN32(d))
	require.InDelta(t, EarthRadiusNM*3.14159265, float64(d), 2)
	require.False(t, IsNaN32(GreatCircleHeading(a, b)))
}

func TestCrossTrackDistanceSign(t *testing.T) {
	// Course due north along -73 longitude; a point east of the course is
	// to the right (positive), west is to the left (negative).
	start, end := MakePoint2LL(40, -73), MakePoint2LL(42, -73)

	right := Offset2LL(MakePoint2LL(41, -73), 90, 1)
	left := Offset2LL(MakePoint2LL(41, -73), 270, 1)

	dr := CrossTrackDistanceNM(right, start, end)
	dl := CrossTrackDistanceNM(left, start, end)

	if dr <= 0 || dl >= 0 {
		t.Fatalf("cross track signs wrong: right %f, left %f", dr, dl)
	}
	if Abs(dr-1) > 0.01 || Abs(dl+1) > 0.01 {
		t.Errorf("cross track magnitudes: right %f, left %f, expected ±1", dr, dl)
	}
	if CrossTrackDistanceNM(MakePoint2LL(41, -73), start, end) != 0 {
		t.Errorf("on-course point should have zero cross track error")
	}
}

func TestAlongTrackDistance(t *testing.T) {
	start, end := MakePoint2LL(40, -73), MakePoint2LL(42, -73)
	mid := MakePoint2LL(41, -73)

	d := AlongTrackDistanceNM(mid, start, end)
	if Abs(d-60) > 0.1 {
		t.Errorf("along track distance %f, expected 60", d)
	}

	// Offsetting the point perpendicular to the course should not change
	// the along-track component much.
	offside := Offset2LL(mid, 90, 2)
	if d2 := AlongTrackDistanceNM(offside, start, end); Abs(d2-60) > 0.1 {
		t.Errorf("along track distance with offset %f, expected 60", d2)
	}
}

func TestOffset2LLRoundTrip(t *testing.T) {
	p := MakePoint2LL(40.6399, -73.7787)
	for _, hdg := range []float32{0, 45, 137, 233, 359} {
		for _, dist := range []float32{1, 25, 400} {
			q := Offset2LL(p, hdg, dist)
			if d := NMDistance2LL(p, q); Abs(d-dist) > dist*0.001+0.01 {
				t.Errorf("offset %f nm at %f: distance back %f", dist, hdg, d)
			}
			if h := GreatCircleHeading(p, q); HeadingDifference(h, hdg) > 0.5 {
				t.Errorf("offset at heading %f: heading back %f", hdg, h)
			}
		}
	}
}

// Cross-check the spherical formulas against an independent geodesy
// implementation over a spread of point pairs.
func TestGeodesyAgainstOrb(t *testing.T) {
	pts := []Point2LL{
		MakePoint2LL(40.6399, -73.7787),
		MakePoint2LL(33.9425, -118.4081),
		MakePoint2LL(51.4775, -0.4614),
		MakePoint2LL(-33.9399, 151.1753),
		MakePoint2LL(1.3644, 103.9915),
	}

	toOrb := func(p Point2LL) orb.Point {
		return orb.Point{float64(p.Longitude()), float64(p.Latitude())}
	}

	for i, a := range pts {
		for j, b := range pts {
			if i == j {
				continue
			}

			dNM := float64(NMDistance2LL(a, b))
			dRef := geo.DistanceHaversine(toOrb(a), toOrb(b)) / metersPerNM
			require.InEpsilonf(t, dRef, dNM, 0.001, "distance %v -> %v", a, b)

			h := float64(GreatCircleHeading(a, b))
			hRef := geo.Bearing(toOrb(a), toOrb(b))
			if hRef < 0 {
				hRef += 360
			}
			require.InDeltaf(t, hRef, h, 0.1, "bearing %v -> %v", a, b)
		}
	}
}
