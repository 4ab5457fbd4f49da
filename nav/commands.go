// nav/commands.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/config"
	"github.com/avionicsim/gpsnav/math"
	"github.com/avionicsim/gpsnav/util"
)

// Pilot/panel commands. These mutate the unit's selectable state and
// take effect on the next Update tick; like Update they must be called
// from the host's single guidance goroutine.

// SetFlightPlan replaces the loaded flight plan and resets all
// sequencing state, any direct-to, and any hold in progress. The plan is
// owned by the core after this call.
func (nav *Nav) SetFlightPlan(fp *av.FlightPlan, simTime time.Time) error {
	if fp == nil || len(fp.Waypoints) == 0 {
		return ErrEmptyFlightPlan
	}
	for _, wp := range fp.Waypoints {
		if !av.ValidFixName(wp.Fix) {
			return ErrInvalidFix
		}
		if math.Abs(wp.Location.Latitude()) > 90 || math.Abs(wp.Location.Longitude()) > 180 {
			return ErrInvalidPosition
		}
	}

	fp.InitializeLegs()
	nav.Plan = fp
	nav.Seq = NavSequence{}
	nav.Hold = nil
	nav.VNav.Mode = util.Select(nav.VNav.Enabled, VNavArmed, VNavDisabled)
	nav.VNav.TargetFix = ""

	NavLog(nav.ID, simTime, NavLogRoute, "flight plan loaded (%s): %s", fp.Source, fp.Encode())
	nav.lg.Infof("%s: flight plan loaded: %s", nav.ID, fp.Encode())
	return nil
}

// ClearFlightPlan removes the plan; guidance flags off until a new one
// is loaded.
func (nav *Nav) ClearFlightPlan(simTime time.Time) {
	nav.Plan = nil
	nav.Seq = NavSequence{}
	nav.Hold = nil
	nav.VNav.Mode = VNavDisabled
	nav.VNav.TargetFix = ""
	NavLog(nav.ID, simTime, NavLogRoute, "flight plan cleared")
}

// ActivateLeg makes waypoint index i the active target, with the leg
// anchored at the aircraft's current position. It cancels any direct-to
// and hold.
func (nav *Nav) ActivateLeg(i int, simTime time.Time) error {
	if nav.Plan == nil {
		return ErrNoFlightPlan
	}
	if i < 0 || i >= len(nav.Plan.Waypoints) {
		return ErrInvalidLegIndex
	}

	nav.Seq.ActiveIndex = i
	nav.Seq.PlanComplete = false
	nav.Seq.DirectTo = nil
	nav.Seq.LegStart = nav.lastState.Position
	nav.Seq.HaveLegStart = nav.haveState
	nav.Hold = nil

	NavLog(nav.ID, simTime, NavLogCommand, "activated leg %d (%s)", i, nav.Plan.Waypoints[i].Fix)
	return nil
}

// DirectTo engages a direct-to the given waypoint, which need not be in
// the flight plan. The leg runs from the present position; automatic
// sequencing pauses until the target is reached or the direct-to is
// cancelled.
func (nav *Nav) DirectTo(wp av.Waypoint, simTime time.Time) error {
	if !av.ValidFixName(wp.Fix) {
		return ErrInvalidFix
	}
	if math.Abs(wp.Location.Latitude()) > 90 || math.Abs(wp.Location.Longitude()) > 180 {
		return ErrInvalidPosition
	}

	nav.Seq.DirectTo = &NavDirectTo{Waypoint: wp, Origin: nav.lastState.Position}
	nav.Seq.PlanComplete = false
	nav.Hold = nil

	NavLog(nav.ID, simTime, NavLogCommand, "direct to %s", wp.Fix)
	nav.lg.Infof("%s: direct to %s", nav.ID, wp.Fix)
	return nil
}

// DirectToFix engages a direct-to a fix already in the flight plan.
func (nav *Nav) DirectToFix(fix string, simTime time.Time) error {
	if nav.Plan == nil {
		return ErrNoFlightPlan
	}
	idx := nav.planIndexOf(fix)
	if idx < 0 {
		return ErrFixNotInRoute
	}
	return nav.DirectTo(nav.Plan.Waypoints[idx], simTime)
}

// CancelDirectTo drops a direct-to and resumes the plan on the active
// leg, re-anchored at the present position.
func (nav *Nav) CancelDirectTo(simTime time.Time) {
	if nav.Seq.DirectTo == nil {
		return
	}
	nav.Seq.DirectTo = nil
	nav.Seq.LegStart = nav.lastState.Position
	nav.Seq.HaveLegStart = nav.haveState
	NavLog(nav.ID, simTime, NavLogCommand, "direct to cancelled")
}

// ToggleSuspend flips manual sequencing suspension and returns the new
// setting. While suspended the active waypoint is frozen but guidance to
// it continues.
func (nav *Nav) ToggleSuspend(simTime time.Time) bool {
	nav.Seq.Suspended = !nav.Seq.Suspended
	NavLog(nav.ID, simTime, NavLogCommand, "sequencing suspended: %v", nav.Seq.Suspended)
	return nav.Seq.Suspended
}

// SelectSource switches the CDI between GPS and the two nav radios.
// Repeating the current selection is a no-op.
func (nav *Nav) SelectSource(s GuidanceSource, simTime time.Time) error {
	if err := nav.selectSource(s); err != nil {
		return err
	}
	NavLog(nav.ID, simTime, NavLogCommand, "guidance source %s", s)
	return nil
}

// SetCourse sets the OBS course for the selected radio source. With GPS
// selected it is a no-op: the course comes from the active leg.
func (nav *Nav) SetCourse(course float32, simTime time.Time) {
	switch nav.Guidance.Source {
	case SourceNAV1, SourceNAV2:
		idx := int(nav.Guidance.Source) - int(SourceNAV1)
		nav.Guidance.OBSCourse[idx] = math.NormalizeHeading(course)
		NavLog(nav.ID, simTime, NavLogCommand, "OBS course %.0f on %s",
			nav.Guidance.OBSCourse[idx], nav.Guidance.Source)
	}
}

// AdjustCourse turns the OBS by delta degrees; no-op with GPS selected.
func (nav *Nav) AdjustCourse(delta float32, simTime time.Time) {
	switch nav.Guidance.Source {
	case SourceNAV1, SourceNAV2:
		idx := int(nav.Guidance.Source) - int(SourceNAV1)
		nav.SetCourse(nav.Guidance.OBSCourse[idx]+delta, simTime)
	}
}

// SetFlightPhase selects the CDI sensitivity for a configured flight
// phase ("enroute", "terminal", "approach" by default).
func (nav *Nav) SetFlightPhase(phase string, simTime time.Time) error {
	fs, ok := nav.Cfg.FullScale(phase)
	if !ok {
		return ErrUnknownPhase
	}
	nav.Guidance.FlightPhase = phase
	nav.Guidance.FullScaleNM = fs
	NavLog(nav.ID, simTime, NavLogCommand, "flight phase %s, full scale %.2f nm", phase, fs)
	return nil
}

// SetVNavEnabled turns vertical guidance on or off. Disabling always
// drops the mode; enabling arms on the next tick if a constrained
// waypoint is ahead.
func (nav *Nav) SetVNavEnabled(enabled bool, simTime time.Time) {
	nav.VNav.Enabled = enabled
	if !enabled {
		nav.VNav.Mode = VNavDisabled
		nav.VNav.TargetFix = ""
	}
	NavLog(nav.ID, simTime, NavLogCommand, "VNAV enabled: %v", enabled)
}

// SetDescentAngle sets the VNAV path angle in degrees, clamped to the
// allowed range.
func (nav *Nav) SetDescentAngle(deg float32, simTime time.Time) {
	nav.VNav.DescentAngleDeg = math.Clamp(deg, config.MinDescentAngleDeg, config.MaxDescentAngleDeg)
	NavLog(nav.ID, simTime, NavLogCommand, "descent angle %.1f", nav.VNav.DescentAngleDeg)
}

// ToggleHold starts holding at the active waypoint, or if already
// holding, exits the hold at the next fix crossing. An ad hoc hold uses
// the charted hold at the fix if there is one, otherwise the configured
// defaults with the inbound course taken from the current leg.
func (nav *Nav) ToggleHold(simTime time.Time) error {
	if nav.Hold != nil {
		nav.Hold.Cancel = true
		NavLog(nav.ID, simTime, NavLogCommand, "hold exit requested at %s", nav.Hold.Hold.Fix)
		return nil
	}

	target, ok := nav.activeTarget()
	if !ok {
		return ErrNoActiveLeg
	}
	if !nav.haveState {
		return ErrInvalidPosition
	}

	hold := av.Hold{
		Fix:           target.Fix,
		InboundCourse: math.GreatCircleHeading(nav.lastState.Position, target.Location),
		TurnDirection: util.Select(nav.Cfg.HoldTurnDirection == "left", av.TurnLeft, av.TurnRight),
		LegSeconds:    nav.Cfg.HoldLegSeconds,
	}
	if target.Hold != nil {
		hold = *target.Hold
	}

	nav.startHold(hold, target.Location, nav.lastState, simTime)
	return nil
}

// SetHoldLegTime changes the straight-leg duration of the hold in
// progress, clamped to the allowed range.
func (nav *Nav) SetHoldLegTime(seconds float32, simTime time.Time) error {
	if nav.Hold == nil {
		return ErrNotHolding
	}
	nav.Hold.Hold.LegSeconds = math.Clamp(seconds, av.MinHoldLegSeconds, av.MaxHoldLegSeconds)
	NavLog(nav.ID, simTime, NavLogCommand, "hold leg time %.0f s", nav.Hold.Hold.LegSeconds)
	return nil
}

// SetHoldDirection changes the turn direction of the hold in progress.
func (nav *Nav) SetHoldDirection(dir av.TurnDirection, simTime time.Time) error {
	if nav.Hold == nil {
		return ErrNotHolding
	}
	if dir != av.TurnLeft && dir != av.TurnRight {
		return ErrUnableCommand
	}
	nav.Hold.Hold.TurnDirection = dir
	NavLog(nav.ID, simTime, NavLogCommand, "hold turns %s", dir)
	return nil
}
