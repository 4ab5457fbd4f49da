// nav/hold.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/math"
	"github.com/avionicsim/gpsnav/util"
)

///////////////////////////////////////////////////////////////////////////
// Holds

// FlyHold tracks an in-progress holding pattern. While it is set on a
// Nav, waypoint sequencing is frozen and lateral guidance follows the
// courses it produces.
type FlyHold struct {
	Hold        av.Hold
	FixLocation math.Point2LL
	State       HoldState
	Entry       av.HoldEntry

	LegStartTime time.Time
	LegStartPos  math.Point2LL

	Circuits int  // completed fix crossings after entry
	Cancel   bool // when set, the hold ends at the next fix crossing
	Done     bool // set once the exit crossing has happened
}

type HoldState int

const (
	// Everyone starts here and then transitions to one of the next three
	// groups depending on their entry method.
	HoldStateApproaching HoldState = iota

	HoldStateDirectTurningInitialOutbound

	HoldStateTurningForParallelEntry
	HoldStateFlyingParallelOutbound
	HoldStateTurningParallelInbound

	HoldStateFlyingTeardropOutbound
	HoldStateTurningForTeardropEntry

	// All holds cycle through these once the entry is done.
	HoldStateTurningOutbound
	HoldStateFlyingOutbound
	HoldStateTurningInbound
	HoldStateFlyingInbound
)

func (s HoldState) String() string {
	return []string{"Approaching", "DirectTurningInitialOutbound", "TurningForParallelEntry", "FlyingParallelOutbound",
		"TurningParallelInbound", "FlyingTeardropOutbound", "TurningForTeardropEntry", "TurningOutbound",
		"FlyingOutbound", "TurningInbound", "FlyingInbound"}[int(s)]
}

// HoldPhase is the coarse view of the state machine that panels display.
type HoldPhase int

const (
	HoldPhaseEntry HoldPhase = iota
	HoldPhaseInbound
	HoldPhaseTurn
	HoldPhaseOutbound
)

func (p HoldPhase) String() string {
	return []string{"entry", "inbound", "turn", "outbound"}[int(p)]
}

func (s HoldState) Phase() HoldPhase {
	switch s {
	case HoldStateFlyingInbound:
		return HoldPhaseInbound
	case HoldStateTurningOutbound, HoldStateTurningInbound:
		return HoldPhaseTurn
	case HoldStateFlyingOutbound:
		return HoldPhaseOutbound
	default:
		return HoldPhaseEntry
	}
}

// HoldStatus is the per-tick hold report in Output.
type HoldStatus struct {
	Fix           string
	Entry         av.HoldEntry
	State         HoldState
	Phase         HoldPhase
	TurnDirection av.TurnDirection // the hold's defined turn direction

	// Guidance for this tick: the course to fly and which way to turn
	// onto it.
	Course float32
	Turn   av.TurnDirection

	LegSeconds float32
	Circuits   int
	Exiting    bool
}

func (fh *FlyHold) Status(course float32, turn av.TurnDirection) *HoldStatus {
	return &HoldStatus{
		Fix:           fh.Hold.Fix,
		Entry:         fh.Entry,
		State:         fh.State,
		Phase:         fh.State.Phase(),
		TurnDirection: fh.Hold.TurnDirection,
		Course:        course,
		Turn:          turn,
		LegSeconds:    fh.Hold.LegTime(),
		Circuits:      fh.Circuits,
		Exiting:       fh.Cancel,
	}
}

// Course tolerance for deciding the aircraft is established on a leg.
// The host flies the aircraft, so this is looser than if we controlled
// the heading ourselves.
const establishedToleranceDeg = 5

func established(track, course float32) bool {
	return math.HeadingDifference(track, course) < establishedToleranceDeg
}

// onInboundIntercept reports whether the aircraft has rolled out onto
// the inbound course line to the fix.
func (fh *FlyHold) onInboundIntercept(state AircraftState) bool {
	anchor := math.Offset2LL(fh.FixLocation, math.OppositeHeading(fh.Hold.InboundCourse), 20)
	xtk := math.CrossTrackDistanceNM(state.Position, anchor, fh.FixLocation)
	return math.Abs(xtk) < 0.25 &&
		math.HeadingDifference(state.GroundTrack, fh.Hold.InboundCourse) < 45
}

// atFix reports an imminent fix crossing.
func (nav *Nav) atFix(state AircraftState, p math.Point2LL) bool {
	return nav.eteSeconds(state, p) < 2
}

// Holds are implemented using a simple state machine where each state is
// handled by a function with this signature. Return values: course to
// fly, which direction to turn onto it, and which state to be in for the
// next step.
type HoldStateFunc func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState)

var holdStateMachine map[HoldState]HoldStateFunc

func init() {
	holdStateMachine = map[HoldState]HoldStateFunc{
		HoldStateApproaching: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			switch fh.Entry {
			case av.HoldEntryDirect:
				// Overfly the fix before starting to turn.
				if nav.atFix(state, fh.FixLocation) {
					return fh.Hold.InboundCourse, av.TurnClosest, HoldStateDirectTurningInitialOutbound
				}

			case av.HoldEntryParallel:
				if nav.atFix(state, fh.FixLocation) {
					outbound := math.OppositeHeading(fh.Hold.InboundCourse)
					return outbound, av.TurnClosest, HoldStateTurningForParallelEntry
				}

			case av.HoldEntryTeardrop:
				// For teardrop, overfly the fix before starting the entry
				// procedure.
				if nav.atFix(state, fh.FixLocation) {
					return teardropCourse(fh.Hold), av.TurnClosest, HoldStateFlyingTeardropOutbound
				}
			}

			return math.GreatCircleHeading(state.Position, fh.FixLocation), av.TurnClosest, HoldStateApproaching
		},

		HoldStateDirectTurningInitialOutbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			// Direct entry: get onto the inbound course before starting
			// the outbound turn (i.e. don't cut the corner if we didn't
			// arrive more or less along the inbound course).
			inbound := fh.Hold.InboundCourse
			if established(state.GroundTrack, inbound) {
				return inbound, av.TurnClosest, HoldStateTurningOutbound
			}
			return inbound, av.TurnClosest, HoldStateDirectTurningInitialOutbound
		},

		HoldStateTurningForParallelEntry: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			outbound := math.OppositeHeading(fh.Hold.InboundCourse)
			if established(state.GroundTrack, outbound) {
				return outbound, av.TurnClosest, HoldStateFlyingParallelOutbound
			}
			return outbound, av.TurnClosest, HoldStateTurningForParallelEntry
		},

		HoldStateFlyingParallelOutbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			outbound := math.OppositeHeading(fh.Hold.InboundCourse)
			if simTime.Sub(fh.LegStartTime) < fh.legDuration() {
				return outbound, av.TurnClosest, HoldStateFlyingParallelOutbound
			}
			return outbound, av.TurnClosest, HoldStateTurningParallelInbound
		},

		HoldStateTurningParallelInbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			// Parallel entries turn opposite the hold's direction, back
			// across the inbound course at a 40 degree intercept.
			offset := float32(util.Select(fh.Hold.TurnDirection == av.TurnRight, -40, 40))
			intercept := math.NormalizeHeading(fh.Hold.InboundCourse + offset)
			turn := util.Select(fh.Hold.TurnDirection == av.TurnRight, av.TurnLeft, av.TurnRight)

			if fh.onInboundIntercept(state) {
				return fh.Hold.InboundCourse, turn, HoldStateFlyingInbound
			}
			return intercept, turn, HoldStateTurningParallelInbound
		},

		HoldStateFlyingTeardropOutbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			hdg := teardropCourse(fh.Hold)
			if established(state.GroundTrack, hdg) &&
				simTime.Sub(fh.LegStartTime) > fh.legDuration() {
				return hdg, av.TurnClosest, HoldStateTurningForTeardropEntry
			}
			return hdg, av.TurnClosest, HoldStateFlyingTeardropOutbound
		},

		HoldStateTurningForTeardropEntry: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			turn := fh.Hold.TurnDirection
			if fh.onInboundIntercept(state) {
				return fh.Hold.InboundCourse, turn, HoldStateFlyingInbound
			}
			return fh.Hold.InboundCourse, turn, HoldStateTurningForTeardropEntry
		},

		HoldStateTurningOutbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			outbound := math.OppositeHeading(fh.Hold.InboundCourse)
			if established(state.GroundTrack, outbound) {
				return outbound, av.TurnClosest, HoldStateFlyingOutbound
			}
			return outbound, fh.Hold.TurnDirection, HoldStateTurningOutbound
		},

		HoldStateFlyingOutbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			outbound := math.OppositeHeading(fh.Hold.InboundCourse)
			if simTime.Sub(fh.LegStartTime) >= fh.legDuration() {
				return outbound, av.TurnClosest, HoldStateTurningInbound
			}
			return outbound, av.TurnClosest, HoldStateFlyingOutbound
		},

		HoldStateTurningInbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			turn := fh.Hold.TurnDirection
			if fh.onInboundIntercept(state) {
				return fh.Hold.InboundCourse, av.TurnClosest, HoldStateFlyingInbound
			}
			return fh.Hold.InboundCourse, turn, HoldStateTurningInbound
		},

		HoldStateFlyingInbound: func(nav *Nav, fh *FlyHold, state AircraftState, simTime time.Time) (float32, av.TurnDirection, HoldState) {
			// Fly direct to the fix; hopefully this is close to the
			// inbound course.
			hdg := math.GreatCircleHeading(state.Position, fh.FixLocation)

			if nav.atFix(state, fh.FixLocation) {
				fh.Circuits++
				if fh.Cancel {
					fh.Done = true
					return hdg, av.TurnClosest, HoldStateFlyingInbound
				}
				return hdg, av.TurnClosest, HoldStateTurningOutbound
			}
			return hdg, av.TurnClosest, HoldStateFlyingInbound
		},
	}
}

// teardropCourse is the outbound course for a teardrop entry: 30 degrees
// off the outbound leg, on the holding side.
func teardropCourse(h av.Hold) float32 {
	offset := float32(util.Select(h.TurnDirection == av.TurnRight, 150, -150))
	return math.NormalizeHeading(h.InboundCourse + offset)
}

func (fh *FlyHold) legDuration() time.Duration {
	return time.Duration(fh.Hold.LegTime() * float32(time.Second))
}

// GetCourse steps the hold state machine and returns the course to fly
// and which way to turn onto it.
func (fh *FlyHold) GetCourse(nav *Nav, state AircraftState, simTime time.Time) (float32, av.TurnDirection) {
	course, turn, newState := holdStateMachine[fh.State](nav, fh, state, simTime)

	if newState != fh.State {
		NavLog(nav.ID, simTime, NavLogHold, "STATE CHANGE: %s -> %s (fix=%s entry=%s)",
			fh.State, newState, fh.Hold.Fix, fh.Entry)
		fh.State = newState
		fh.LegStartPos = state.Position
		fh.LegStartTime = simTime
	}

	NavLog(nav.ID, simTime, NavLogHold, "state=%s track=%.1f course=%.1f turn=%v dist=%.2fnm timer=%s",
		fh.State, state.GroundTrack, course, turn,
		math.NMDistance2LL(state.Position, fh.FixLocation), simTime.Sub(fh.LegStartTime))

	return course, turn
}

// RacetrackCorners returns the four corners of the hold's racetrack at
// the given ground speed, in flying order starting at the fix, for map
// display.
func (fh *FlyHold) RacetrackCorners(gsKt float32) [4]math.Point2LL {
	inbound := fh.Hold.InboundCourse
	outbound := math.OppositeHeading(inbound)
	side := float32(util.Select(fh.Hold.TurnDirection == av.TurnRight, 90, -90))

	// Standard rate 180 degree turn takes a minute; its diameter is the
	// distance flown in that minute over pi.
	diameter := gsKt / 60 / math.Pi
	legLen := gsKt * fh.Hold.LegTime() / 3600

	abeamFix := math.Offset2LL(fh.FixLocation, math.NormalizeHeading(inbound+side), diameter)
	return [4]math.Point2LL{
		fh.FixLocation,
		abeamFix,
		math.Offset2LL(abeamFix, outbound, legLen),
		math.Offset2LL(fh.FixLocation, outbound, legLen),
	}
}

// startHold begins holding at the given fix, classifying the entry from
// the aircraft's current bearing to it.
func (nav *Nav) startHold(hold av.Hold, loc math.Point2LL, state AircraftState, simTime time.Time) {
	entry := hold.Entry(math.GreatCircleHeading(state.Position, loc))
	nav.Hold = &FlyHold{
		Hold:         hold,
		FixLocation:  loc,
		State:        HoldStateApproaching,
		Entry:        entry,
		LegStartTime: simTime,
		LegStartPos:  state.Position,
	}

	NavLog(nav.ID, simTime, NavLogHold, "holding at %s: %s entry, %s turns, %.0f s legs",
		hold.Fix, entry, hold.TurnDirection, hold.LegTime())
	nav.lg.Infof("%s: holding at %s with %s entry", nav.ID, hold.Fix, entry)
}

// finishHold ends the hold after its exit crossing and sequences past
// the hold fix if it is the active plan waypoint.
func (nav *Nav) finishHold(simTime time.Time) {
	fh := nav.Hold
	nav.Hold = nil

	NavLog(nav.ID, simTime, NavLogHold, "exiting hold at %s after %d circuits", fh.Hold.Fix, fh.Circuits)
	nav.lg.Infof("%s: exiting hold at %s", nav.ID, fh.Hold.Fix)

	if nav.Plan != nil && nav.Seq.ActiveIndex < len(nav.Plan.Waypoints) {
		if wp := nav.Plan.Waypoints[nav.Seq.ActiveIndex]; wp.Fix == fh.Hold.Fix {
			nav.sequencePast(wp, simTime)
		}
	}
}
