// nav/cdi.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/avionicsim/gpsnav/math"
)

// GuidanceSource selects what drives the course deviation indicator.
type GuidanceSource int

const (
	SourceGPS GuidanceSource = iota
	SourceNAV1
	SourceNAV2
)

func (s GuidanceSource) String() string {
	return []string{"GPS", "NAV1", "NAV2"}[int(s)]
}

// ToFromFlag is the CDI's TO/FROM indication; FlagOff with an invalid
// signal.
type ToFromFlag int

const (
	FlagOff ToFromFlag = iota
	FlagTo
	FlagFrom
)

func (f ToFromFlag) String() string {
	return []string{"off", "to", "from"}[int(f)]
}

// RadioSample is one tick's worth of demodulated VHF nav receiver
// output, supplied by the host for each of the two radios.
type RadioSample struct {
	Deflection     float32 // normalized course deviation, -1..1
	ToFrom         ToFromFlag
	Glideslope     float32 // normalized glideslope deviation, -1..1
	HasGlideslope  bool
	SignalStrength float32 // 0..1; below the configured threshold the needle flags off
}

// NavGuidance holds the pilot-selectable CDI state. OBS courses are kept
// per radio so that switching sources and back does not lose a set
// course.
type NavGuidance struct {
	Source      GuidanceSource
	OBSCourse   [2]float32 // NAV1, NAV2
	FlightPhase string
	FullScaleNM float32
}

// GuidanceState is the CDI output for one tick.
type GuidanceState struct {
	Source      GuidanceSource
	SignalValid bool

	// Course is the reference course: the leg's desired track for GPS,
	// the OBS setting for a radio source.
	Course       float32
	CrossTrackNM float32 // GPS only; negative left of course
	Deflection   float32 // -1..1, full scale at FullScaleNM for GPS
	FullScaleNM  float32
	ToFrom       ToFromFlag

	Glideslope    float32
	HasGlideslope bool
}

func (nav *Nav) computeGuidance(state AircraftState, radios [2]RadioSample, holdCourse float32) GuidanceState {
	g := GuidanceState{
		Source:      nav.Guidance.Source,
		FullScaleNM: nav.Guidance.FullScaleNM,
	}

	switch nav.Guidance.Source {
	case SourceNAV1, SourceNAV2:
		idx := int(nav.Guidance.Source) - int(SourceNAV1)
		sample := radios[idx]
		g.Course = nav.Guidance.OBSCourse[idx]
		if sample.SignalStrength < nav.Cfg.RadioSignalThreshold {
			return g // needle centered, flag off
		}
		g.SignalValid = true
		g.Deflection = math.Clamp(sample.Deflection, -1, 1)
		g.ToFrom = sample.ToFrom
		g.Glideslope = math.Clamp(sample.Glideslope, -1, 1)
		g.HasGlideslope = sample.HasGlideslope
		return g

	default:
		return nav.computeGPSGuidance(state, holdCourse, g)
	}
}

func (nav *Nav) computeGPSGuidance(state AircraftState, holdCourse float32, g GuidanceState) GuidanceState {
	target, ok := nav.activeTarget()
	if !ok {
		return g // no plan: flag off
	}

	legStart := nav.Seq.LegStart
	if nav.Seq.DirectTo != nil {
		legStart = nav.Seq.DirectTo.Origin
	}

	if nav.Hold != nil {
		// While holding, cross-track is measured against the inbound
		// course line through the fix and the commanded course comes
		// from the hold state machine.
		g.Course = holdCourse
		inbound := nav.Hold.Hold.InboundCourse
		anchor := math.Offset2LL(nav.Hold.FixLocation, math.OppositeHeading(inbound), 20)
		g.CrossTrackNM = math.CrossTrackDistanceNM(state.Position, anchor, nav.Hold.FixLocation)
	} else if legStart == target.Location {
		// Degenerate leg; steer direct.
		g.Course = math.GreatCircleHeading(state.Position, target.Location)
		g.CrossTrackNM = 0
	} else {
		g.Course = math.GreatCircleHeading(legStart, target.Location)
		g.CrossTrackNM = math.CrossTrackDistanceNM(state.Position, legStart, target.Location)
	}

	g.SignalValid = true
	g.Deflection = math.Clamp(g.CrossTrackNM/g.FullScaleNM, -1, 1)
	// GPS guidance always flies toward the active waypoint.
	g.ToFrom = FlagTo
	return g
}

// selectSource switches the CDI source. GPS guidance state is derived
// each tick, so the switch itself carries no state beyond the selection;
// OBS courses persist per radio.
func (nav *Nav) selectSource(s GuidanceSource) error {
	switch s {
	case SourceGPS, SourceNAV1, SourceNAV2:
		nav.Guidance.Source = s
		return nil
	default:
		return ErrUnableCommand
	}
}
