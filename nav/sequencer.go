// nav/sequencer.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/math"
)

// NavSequence tracks which leg of the flight plan is active. The plan
// itself is immutable; all mutable sequencing state lives here so it can
// be snapshot and restored wholesale.
type NavSequence struct {
	ActiveIndex  int
	Suspended    bool
	PlanComplete bool

	// LegStart anchors the active leg for cross-track guidance: the
	// previous waypoint once a leg has been sequenced normally, or the
	// aircraft position where the leg was activated.
	LegStart     math.Point2LL
	HaveLegStart bool

	DirectTo *NavDirectTo
}

// NavDirectTo is an off-plan (or mid-plan) direct-to override. While it
// is set, automatic sequencing is paused and guidance flies the leg from
// Origin to the target waypoint.
type NavDirectTo struct {
	Waypoint av.Waypoint
	Origin   math.Point2LL
}

// proximityThresholdNM is the distance at which a waypoint counts as
// reached: the distance covered in the configured look-ahead time,
// clamped so that it neither vanishes at low speed nor balloons at high
// speed.
func (nav *Nav) proximityThresholdNM(state AircraftState) float32 {
	d := state.GroundSpeed * nav.Cfg.SequenceLookaheadSec / 3600
	return math.Clamp(d, nav.Cfg.SequenceProximityNM[0], nav.Cfg.SequenceProximityNM[1])
}

// passedWaypoint reports whether the aircraft should be considered past
// the waypoint at wploc for the leg anchored at legStart: either within
// the proximity threshold, or beyond the waypoint with the bearing to it
// swung away from the leg course.
func (nav *Nav) passedWaypoint(state AircraftState, legStart, wploc math.Point2LL) bool {
	dist := math.NMDistance2LL(state.Position, wploc)
	prox := nav.proximityThresholdNM(state)
	if dist < prox {
		return true
	}

	// The overflight test only applies close to the fix; far away, a
	// large bearing difference just means an intercept angle.
	if dist > 4*prox {
		return false
	}

	course := math.GreatCircleHeading(legStart, wploc)
	if course == 0 && legStart == wploc {
		return false
	}
	bearing := math.GreatCircleHeading(state.Position, wploc)
	return math.HeadingDifference(bearing, course) > nav.Cfg.SequencePassedCourseDeg
}

func (nav *Nav) updateSequencing(state AircraftState, simTime time.Time) {
	target, ok := nav.activeTarget()
	if !ok {
		return
	}

	if !nav.Seq.HaveLegStart {
		// First tick after a plan load or leg activation: the leg runs
		// from wherever the aircraft is now.
		nav.Seq.LegStart = state.Position
		nav.Seq.HaveLegStart = true
	}

	if nav.Hold != nil {
		// Holding: the hold state machine owns fix crossings and the
		// sequencer stays frozen until the hold exits.
		return
	}

	if nav.Seq.DirectTo != nil {
		nav.updateDirectTo(state, simTime)
		return
	}

	if nav.Seq.Suspended || nav.Seq.PlanComplete {
		return
	}

	if !nav.passedWaypoint(state, nav.Seq.LegStart, target.Location) {
		return
	}

	if target.Hold != nil {
		// A charted hold at the active fix starts instead of sequencing
		// past it; the sequencer resumes when the hold is exited.
		nav.startHold(*target.Hold, target.Location, state, simTime)
		return
	}

	nav.sequencePast(target, simTime)
}

// sequencePast advances the active leg beyond wp, or flags the plan
// complete if wp is the final waypoint.
func (nav *Nav) sequencePast(wp av.Waypoint, simTime time.Time) {
	if nav.Seq.ActiveIndex+1 >= len(nav.Plan.Waypoints) {
		nav.Seq.PlanComplete = true
		NavLog(nav.ID, simTime, NavLogWaypoint, "passed %s: flight plan complete", wp.Fix)
		nav.lg.Infof("%s: flight plan complete at %s", nav.ID, wp.Fix)
		return
	}

	nav.Seq.ActiveIndex++
	nav.Seq.LegStart = wp.Location
	nav.Seq.HaveLegStart = true
	next := nav.Plan.Waypoints[nav.Seq.ActiveIndex]
	NavLog(nav.ID, simTime, NavLogWaypoint, "sequenced %s -> %s", wp.Fix, next.Fix)
	nav.lg.Debugf("%s: sequenced %s -> %s", nav.ID, wp.Fix, next.Fix)

	if next.Hold != nil && nav.haveState {
		// Charted hold on the new leg: start the entry now so the entry
		// sector is classified from the inbound bearing, not from on top
		// of the fix.
		nav.startHold(*next.Hold, next.Location, nav.lastState, simTime)
	}
}

// updateDirectTo watches for arrival at a direct-to target. Reaching a
// target that is in the plan resumes normal sequencing past it; an
// off-plan target leaves the direct-to leg active until it is cancelled.
func (nav *Nav) updateDirectTo(state AircraftState, simTime time.Time) {
	dt := nav.Seq.DirectTo
	if !nav.passedWaypoint(state, dt.Origin, dt.Waypoint.Location) {
		return
	}

	if dt.Waypoint.Hold != nil {
		nav.Seq.DirectTo = nil
		nav.resumePlanAt(dt.Waypoint, simTime)
		nav.startHold(*dt.Waypoint.Hold, dt.Waypoint.Location, state, simTime)
		return
	}

	idx := nav.planIndexOf(dt.Waypoint.Fix)
	if idx < 0 {
		NavLog(nav.ID, simTime, NavLogWaypoint, "reached off-plan direct-to %s", dt.Waypoint.Fix)
		return
	}

	nav.Seq.DirectTo = nil
	nav.Seq.ActiveIndex = idx
	nav.Seq.LegStart = dt.Waypoint.Location
	nav.Seq.HaveLegStart = true
	nav.Seq.PlanComplete = false
	nav.sequencePast(dt.Waypoint, simTime)
}

// resumePlanAt points the sequencer at wp's plan position (if it has
// one) without sequencing past it.
func (nav *Nav) resumePlanAt(wp av.Waypoint, simTime time.Time) {
	if idx := nav.planIndexOf(wp.Fix); idx >= 0 {
		nav.Seq.ActiveIndex = idx
		nav.Seq.LegStart = wp.Location
		nav.Seq.HaveLegStart = true
		nav.Seq.PlanComplete = false
	}
}

// planIndexOf returns the index of the named fix in the flight plan at
// or after the active leg, or -1. Searching forward keeps repeated fixes
// (course reversals, procedure turns) from sequencing backwards.
func (nav *Nav) planIndexOf(fix string) int {
	if nav.Plan == nil {
		return -1
	}
	for i := max(nav.Seq.ActiveIndex, 0); i < len(nav.Plan.Waypoints); i++ {
		if nav.Plan.Waypoints[i].Fix == fix {
			return i
		}
	}
	for i := 0; i < min(nav.Seq.ActiveIndex, len(nav.Plan.Waypoints)); i++ {
		if nav.Plan.Waypoints[i].Fix == fix {
			return i
		}
	}
	return -1
}
