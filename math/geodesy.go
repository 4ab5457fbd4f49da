// math/geodesy.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

// Great-circle relationships on a spherical earth. The float32 Point2LL
// representation is plenty for waypoint coordinates but the intermediate
// trigonometry is done in float64: over long legs the difference between
// nearly-equal values is exactly where float32 falls apart.

// EarthRadiusNM is the mean spherical earth radius in nautical miles.
const EarthRadiusNM = 3440.065

// Point2LL stores a position with [0] holding longitude and [1] latitude,
// both in decimal degrees (negative for west/south).
type Point2LL [2]float32

func MakePoint2LL(latitude, longitude float32) Point2LL {
	return Point2LL{longitude, latitude}
}

func (p Point2LL) Longitude() float32 { return p[0] }
func (p Point2LL) Latitude() float32  { return p[1] }

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// central angle between a and b, in radians, via the haversine formula
func centralAngle(a, b Point2LL) float64 {
	lat1, lon1 := float64(a[1])*gomath.Pi/180, float64(a[0])*gomath.Pi/180
	lat2, lon2 := float64(b[1])*gomath.Pi/180, float64(b[0])*gomath.Pi/180

	sdlat := gomath.Sin((lat2 - lat1) / 2)
	sdlon := gomath.Sin((lon2 - lon1) / 2)
	h := sdlat*sdlat + gomath.Cos(lat1)*gomath.Cos(lat2)*sdlon*sdlon

	// h can drift a hair outside [0,1]; clamp so Sqrt/Asin stay finite,
	// including for antipodal points.
	h = gomath.Min(gomath.Max(h, 0), 1)

	return 2 * gomath.Asin(gomath.Sqrt(h))
}

// NMDistance2LL returns the great-circle distance between two points in
// nautical miles. Coincident points give exactly zero.
func NMDistance2LL(a, b Point2LL) float32 {
	if a == b {
		return 0
	}
	return float32(centralAngle(a, b) * EarthRadiusNM)
}

// GreatCircleHeading returns the initial true course from a to b in
// [0, 360). For coincident points (where the course is undefined) it
// returns 0 rather than NaN.
func GreatCircleHeading(a, b Point2LL) float32 {
	if a == b {
		return 0
	}

	lat1, lon1 := float64(a[1])*gomath.Pi/180, float64(a[0])*gomath.Pi/180
	lat2, lon2 := float64(b[1])*gomath.Pi/180, float64(b[0])*gomath.Pi/180
	dlon := lon2 - lon1

	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)
	if x == 0 && y == 0 {
		return 0
	}

	return NormalizeHeading(float32(gomath.Atan2(y, x) * 180 / gomath.Pi))
}

// CrossTrackDistanceNM returns the perpendicular distance in nautical
// miles from p to the great circle through legStart and legEnd, negative
// when p is left of the course and positive when right. A degenerate leg
// (coincident endpoints) yields zero.
func CrossTrackDistanceNM(p, legStart, legEnd Point2LL) float32 {
	if legStart == legEnd || p == legStart {
		return 0
	}

	d13 := centralAngle(legStart, p)
	theta13 := float64(Radians(GreatCircleHeading(legStart, p)))
	theta12 := float64(Radians(GreatCircleHeading(legStart, legEnd)))

	s := gomath.Sin(d13) * gomath.Sin(theta13-theta12)
	s = gomath.Min(gomath.Max(s, -1), 1)
	return float32(gomath.Asin(s) * EarthRadiusNM)
}

// AlongTrackDistanceNM returns the distance in nautical miles from
// legStart to the point on the legStart->legEnd great circle nearest p.
func AlongTrackDistanceNM(p, legStart, legEnd Point2LL) float32 {
	if legStart == legEnd || p == legStart {
		return 0
	}

	d13 := centralAngle(legStart, p)
	dxt := float64(CrossTrackDistanceNM(p, legStart, legEnd)) / EarthRadiusNM

	ca := gomath.Cos(d13) / gomath.Cos(dxt)
	ca = gomath.Min(gomath.Max(ca, -1), 1)
	return float32(gomath.Acos(ca) * EarthRadiusNM)
}

// Offset2LL returns the point reached by traveling dist nautical miles
// from p along the initial true course hdg.
func Offset2LL(p Point2LL, hdg float32, dist float32) Point2LL {
	if dist == 0 {
		return p
	}

	lat1, lon1 := float64(p[1])*gomath.Pi/180, float64(p[0])*gomath.Pi/180
	theta := float64(hdg) * gomath.Pi / 180
	d := float64(dist) / EarthRadiusNM

	lat2 := gomath.Asin(gomath.Sin(lat1)*gomath.Cos(d) + gomath.Cos(lat1)*gomath.Sin(d)*gomath.Cos(theta))
	lon2 := lon1 + gomath.Atan2(gomath.Sin(theta)*gomath.Sin(d)*gomath.Cos(lat1),
		gomath.Cos(d)-gomath.Sin(lat1)*gomath.Sin(lat2))

	// Keep longitude in [-180, 180).
	lon2 = gomath.Mod(lon2+3*gomath.Pi, 2*gomath.Pi) - gomath.Pi

	return Point2LL{float32(lon2 * 180 / gomath.Pi), float32(lat2 * 180 / gomath.Pi)}
}
