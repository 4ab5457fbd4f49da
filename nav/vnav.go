// nav/vnav.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	gomath "math"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/math"
)

type VNavMode int

const (
	VNavDisabled VNavMode = iota
	VNavArmed             // descent target ahead, top of descent not yet reached
	VNavActive            // on the descent path
)

func (m VNavMode) String() string {
	return []string{"disabled", "armed", "active"}[int(m)]
}

// NavVNav holds the pilot-selectable vertical guidance state.
type NavVNav struct {
	Enabled         bool
	DescentAngleDeg float32
	Mode            VNavMode
	// TargetFix identifies the constraint currently being descended to;
	// when the target changes the mode drops back to armed.
	TargetFix string
}

// VNavState is the vertical guidance output for one tick.
type VNavState struct {
	Mode            VNavMode
	DescentAngleDeg float32

	TargetFix        string
	TargetAltitudeFt float32
	DistanceNM       float32 // along-plan distance to the target fix

	// FeetPerNM is the descent gradient, rounded to the nearest 100
	// ft/nm as flown.
	FeetPerNM     float32
	TodDistanceNM float32 // to the top of descent; negative once past it
	TodAlert      bool    // armed and within the look-ahead of the TOD

	// VerticalDeviationFt is the height above (+) or below (-) the
	// planned descent path; only meaningful when active.
	VerticalDeviationFt float32
	// RequiredVSFpm is the descent rate needed to reach the target
	// altitude at the fix from the present position, as a magnitude.
	RequiredVSFpm float32
}

// descentGradient returns the descent gradient in ft/nm for a path
// angle, rounded to the nearest 100 ft/nm (a 3 degree path descends at
// 300 ft/nm).
func descentGradient(angleDeg float32) float32 {
	exact := math.Tan(math.Radians(angleDeg)) * math.FeetPerNauticalMile
	return float32(gomath.Round(float64(exact)/100) * 100)
}

// vnavTarget returns the constraint VNAV descends to: the direct-to
// waypoint if it carries a constraint, otherwise the next constrained
// waypoint in the plan, along with the along-plan distance to it.
func (nav *Nav) vnavTarget(state AircraftState) (av.Waypoint, float32, bool) {
	if dt := nav.Seq.DirectTo; dt != nil {
		if dt.Waypoint.Constraint == nil {
			// Distance along the abandoned plan is meaningless during an
			// off-path direct-to, so an unconstrained target disables
			// vertical guidance rather than guessing.
			return av.Waypoint{}, 0, false
		}
		return dt.Waypoint, math.NMDistance2LL(state.Position, dt.Waypoint.Location), true
	}

	if nav.Plan == nil || len(nav.Plan.Waypoints) == 0 || nav.Seq.PlanComplete {
		return av.Waypoint{}, 0, false
	}

	idx := nav.Plan.NextConstrainedIndex(nav.Seq.ActiveIndex)
	if idx < 0 {
		return av.Waypoint{}, 0, false
	}

	active := nav.Plan.Waypoints[nav.Seq.ActiveIndex]
	dist := math.NMDistance2LL(state.Position, active.Location) +
		nav.Plan.DistanceBetween(nav.Seq.ActiveIndex, idx)
	return nav.Plan.Waypoints[idx], dist, true
}

func (nav *Nav) computeVNav(state AircraftState) VNavState {
	v := VNavState{
		Mode:            VNavDisabled,
		DescentAngleDeg: nav.VNav.DescentAngleDeg,
	}

	if !nav.VNav.Enabled {
		nav.VNav.Mode = VNavDisabled
		nav.VNav.TargetFix = ""
		return v
	}

	target, dist, ok := nav.vnavTarget(state)
	if !ok {
		nav.VNav.Mode = VNavDisabled
		nav.VNav.TargetFix = ""
		return v
	}

	if target.Fix != nav.VNav.TargetFix {
		// New descent target: re-arm and let the TOD check below decide
		// whether we are already on (or past) the new path.
		nav.VNav.TargetFix = target.Fix
		nav.VNav.Mode = VNavArmed
	}

	targetAlt := target.Constraint.TargetAltitude()
	altToLose := state.Altitude - targetAlt
	gradient := descentGradient(nav.VNav.DescentAngleDeg)

	var descentDist float32
	if altToLose > 0 {
		descentDist = altToLose / gradient
	}
	tod := dist - descentDist

	if nav.VNav.Mode == VNavArmed && altToLose > 0 && tod <= 0 {
		nav.VNav.Mode = VNavActive
		nav.lg.Debugf("%s: VNAV active, %s at %.0f ft, %.1f nm to go",
			nav.ID, target.Fix, targetAlt, dist)
	}

	v.Mode = nav.VNav.Mode
	v.TargetFix = target.Fix
	v.TargetAltitudeFt = targetAlt
	v.DistanceNM = dist
	v.FeetPerNM = gradient
	v.TodDistanceNM = tod
	v.TodAlert = v.Mode == VNavArmed && altToLose > 0 && tod <= nav.Cfg.TodLookaheadNM

	if v.Mode == VNavActive {
		plannedAlt := targetAlt + dist*gradient
		v.VerticalDeviationFt = state.Altitude - plannedAlt
	}
	if altToLose > 0 && dist > 0.05 && state.GroundSpeed >= 1 {
		eteMin := dist / state.GroundSpeed * 60
		v.RequiredVSFpm = altToLose / eteMin
	}

	return v
}
