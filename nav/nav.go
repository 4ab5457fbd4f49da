// nav/nav.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	"fmt"
	"strings"
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/config"
	"github.com/avionicsim/gpsnav/log"
	"github.com/avionicsim/gpsnav/math"

	"github.com/brunoga/deep"
)

// Errors used by the nav package
var (
	ErrNoFlightPlan    = errors.New("No flight plan loaded")
	ErrEmptyFlightPlan = errors.New("Flight plan has no waypoints")
	ErrInvalidFix      = errors.New("Invalid fix")
	ErrFixNotInRoute   = errors.New("Fix not in the flight plan")
	ErrInvalidLegIndex = errors.New("Invalid leg index")
	ErrNoActiveLeg     = errors.New("No active leg")
	ErrUnknownPhase    = errors.New("Unknown flight phase")
	ErrNotHolding      = errors.New("Not currently holding")
	ErrInvalidPosition = errors.New("Invalid aircraft position")
	ErrUnableCommand   = errors.New("Unable")
)

// Nav is a single navigation computer: waypoint sequencing, lateral
// guidance, VNAV, and hold flying for one guidance source selection.
// Install two of them for a dual-unit panel. Pointers are used for
// optional values; nil -> unset/unspecified.
type Nav struct {
	// ID labels this unit in logs, e.g. "GPS1".
	ID string

	Plan     *av.FlightPlan
	Seq      NavSequence
	Guidance NavGuidance
	VNav     NavVNav
	Hold     *FlyHold

	Cfg config.Config

	// Most recent valid aircraft state; commands that need a position
	// (direct-to, leg activation, hold entry) use it between ticks.
	lastState AircraftState
	haveState bool

	lg *log.Logger
}

// AircraftState is the host-supplied aircraft sample for one tick. The
// core never integrates position itself; it only reads these.
type AircraftState struct {
	Position      math.Point2LL
	TrueHeading   float32 // degrees
	GroundTrack   float32 // degrees
	GroundSpeed   float32 // knots
	Altitude      float32 // feet
	VerticalSpeed float32 // feet per minute
}

// Valid reports whether the sample is usable for guidance: finite
// values, coordinates in range, non-negative ground speed.
func (s AircraftState) Valid() bool {
	for _, v := range []float32{s.Position.Latitude(), s.Position.Longitude(),
		s.TrueHeading, s.GroundTrack, s.GroundSpeed, s.Altitude, s.VerticalSpeed} {
		if math.IsNaN32(v) || math.IsInf32(v) {
			return false
		}
	}
	return math.Abs(s.Position.Latitude()) <= 90 &&
		math.Abs(s.Position.Longitude()) <= 180 &&
		s.GroundSpeed >= 0
}

// Output is the per-tick result of Update: everything a panel or
// autopilot consumes. It is a value snapshot; the caller may retain it.
type Output struct {
	// Valid is false when the aircraft state was unusable; the rest of
	// the output is then zero apart from Guidance.Source.
	Valid bool

	Guidance GuidanceState
	Sequence SequenceState
	VNav     VNavState
	Hold     *HoldStatus // nil when not holding
}

// SequenceState reports the sequencer's view of the active leg.
type SequenceState struct {
	ActiveIndex  int
	ActiveFix    string
	Suspended    bool
	PlanComplete bool
	DirectToFix  string // empty unless a direct-to is active

	DistanceNM float32 // to the active waypoint
	BearingDeg float32
	ETESeconds float32 // MaxETESeconds when ground speed is ~zero
}

// MaxETESeconds is reported when the time to a fix cannot be computed.
const MaxETESeconds = 99 * 3600

func MakeNav(id string, cfg config.Config, lg *log.Logger) *Nav {
	nav := &Nav{
		ID:  id,
		Cfg: cfg,
		lg:  lg,
	}
	nav.Guidance = NavGuidance{
		Source:      SourceGPS,
		FlightPhase: config.PhaseEnroute,
	}
	if fs, ok := cfg.FullScale(config.PhaseEnroute); ok {
		nav.Guidance.FullScaleNM = fs
	} else {
		// A config without "enroute" is legal; fall back to the widest
		// configured scale.
		for _, phase := range cfg.Phases() {
			if fs, _ := cfg.FullScale(phase); fs > nav.Guidance.FullScaleNM {
				nav.Guidance.FullScaleNM = fs
				nav.Guidance.FlightPhase = phase
			}
		}
	}
	nav.VNav = NavVNav{DescentAngleDeg: cfg.DescentAngleDeg}

	lg.Infof("%s: navigation computer initialized, phase %s full scale %.2f nm",
		id, nav.Guidance.FlightPhase, nav.Guidance.FullScaleNM)
	return nav
}

// Update runs one guidance tick: sequencing, hold flying, lateral
// guidance, and VNAV, in that order. It is not safe for concurrent use;
// the host calls it from a single goroutine.
func (nav *Nav) Update(state AircraftState, radios [2]RadioSample, simTime time.Time) Output {
	if !state.Valid() {
		nav.lg.Warnf("%s: discarding invalid aircraft state %+v", nav.ID, state)
		return Output{Guidance: GuidanceState{Source: nav.Guidance.Source}}
	}
	nav.lastState = state
	nav.haveState = true

	nav.updateSequencing(state, simTime)

	var holdCourse float32
	var holdTurn av.TurnDirection
	if nav.Hold != nil {
		holdCourse, holdTurn = nav.Hold.GetCourse(nav, state, simTime)
		if nav.Hold.Done {
			nav.finishHold(simTime)
		}
	}

	out := Output{
		Valid:    true,
		Guidance: nav.computeGuidance(state, radios, holdCourse),
		Sequence: nav.sequenceState(state),
		VNav:     nav.computeVNav(state),
	}
	if nav.Hold != nil {
		out.Hold = nav.Hold.Status(holdCourse, holdTurn)
	}

	NavLog(nav.ID, simTime, NavLogState,
		"fix=%s dist=%.2fnm xtk=%.3fnm defl=%.2f vnav=%s",
		out.Sequence.ActiveFix, out.Sequence.DistanceNM,
		out.Guidance.CrossTrackNM, out.Guidance.Deflection, out.VNav.Mode)

	return out
}

// eteSeconds returns the estimated time en route to p in seconds given
// the current ground speed.
func (nav *Nav) eteSeconds(state AircraftState, p math.Point2LL) float32 {
	if state.GroundSpeed < 1 {
		return MaxETESeconds
	}
	return math.NMDistance2LL(state.Position, p) / state.GroundSpeed * 3600
}

// activeTarget returns the waypoint lateral guidance is flying toward: a
// direct-to target if one is set, otherwise the plan's active waypoint.
func (nav *Nav) activeTarget() (av.Waypoint, bool) {
	if nav.Seq.DirectTo != nil {
		return nav.Seq.DirectTo.Waypoint, true
	}
	if nav.Plan == nil || len(nav.Plan.Waypoints) == 0 {
		return av.Waypoint{}, false
	}
	idx := math.Clamp(nav.Seq.ActiveIndex, 0, len(nav.Plan.Waypoints)-1)
	return nav.Plan.Waypoints[idx], true
}

func (nav *Nav) sequenceState(state AircraftState) SequenceState {
	ss := SequenceState{
		ActiveIndex: nav.Seq.ActiveIndex,
		// Holding implies suspension: the sequencer is frozen until the
		// hold exits.
		Suspended:    nav.Seq.Suspended || nav.Hold != nil,
		PlanComplete: nav.Seq.PlanComplete,
	}
	if nav.Seq.DirectTo != nil {
		ss.DirectToFix = nav.Seq.DirectTo.Waypoint.Fix
	}

	target, ok := nav.activeTarget()
	if !ok {
		return ss
	}
	ss.ActiveFix = target.Fix
	ss.DistanceNM = math.NMDistance2LL(state.Position, target.Location)
	ss.BearingDeg = math.GreatCircleHeading(state.Position, target.Location)
	ss.ETESeconds = nav.eteSeconds(state, target.Location)
	return ss
}

// Summary returns a multi-line human-readable report of the unit's
// state, for CLIs and debugging.
func (nav *Nav) Summary(simTime time.Time) string {
	var lines []string

	if nav.Plan == nil || len(nav.Plan.Waypoints) == 0 {
		lines = append(lines, "No flight plan loaded.")
	} else {
		lines = append(lines, "Route: "+nav.Plan.Encode())
		target, _ := nav.activeTarget()
		lines = append(lines, fmt.Sprintf("Active waypoint: %s (leg %d of %d)",
			target.Fix, nav.Seq.ActiveIndex+1, len(nav.Plan.Waypoints)))
	}
	if nav.Seq.DirectTo != nil {
		lines = append(lines, "Direct to "+nav.Seq.DirectTo.Waypoint.Fix)
	}
	if nav.Seq.Suspended {
		lines = append(lines, "Sequencing suspended.")
	}
	if nav.Seq.PlanComplete {
		lines = append(lines, "Flight plan complete.")
	}

	lines = append(lines, fmt.Sprintf("Source %s, phase %s, full scale %.2f nm.",
		nav.Guidance.Source, nav.Guidance.FlightPhase, nav.Guidance.FullScaleNM))

	if nav.VNav.Enabled {
		lines = append(lines, fmt.Sprintf("VNAV enabled, %.1f degree path.", nav.VNav.DescentAngleDeg))
	}
	if nav.Hold != nil {
		lines = append(lines, fmt.Sprintf("Holding at %s: %s entry, state %s.",
			nav.Hold.Hold.Fix, nav.Hold.Entry, nav.Hold.State))
	}

	return strings.Join(lines, "\n")
}

///////////////////////////////////////////////////////////////////////////
// Snapshots

// NavSnapshot captures all externally-modifiable state in Nav for
// rollback purposes. It does not include the aircraft state; the plan
// pointer is shared since plans are immutable once loaded.
type NavSnapshot struct {
	Plan     *av.FlightPlan
	Seq      NavSequence
	Guidance NavGuidance
	VNav     NavVNav
	Hold     *FlyHold
}

func (nav *Nav) TakeSnapshot() NavSnapshot {
	return deep.MustCopy(NavSnapshot{
		Plan:     nav.Plan,
		Seq:      nav.Seq,
		Guidance: nav.Guidance,
		VNav:     nav.VNav,
		Hold:     nav.Hold,
	})
}

func (nav *Nav) RestoreSnapshot(snap NavSnapshot) {
	snap = deep.MustCopy(snap)
	nav.Plan = snap.Plan
	nav.Seq = snap.Seq
	nav.Guidance = snap.Guidance
	nav.VNav = snap.VNav
	nav.Hold = snap.Hold
}
