// nav/nav_test.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/config"
	"github.com/avionicsim/gpsnav/math"
)

var testStart = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func makeTestNav(t *testing.T) *Nav {
	t.Helper()
	return MakeNav("GPS1", config.Default(), nil)
}

func ac(lat, lon, track, gs, alt float32) AircraftState {
	return AircraftState{
		Position:    math.MakePoint2LL(lat, lon),
		TrueHeading: track,
		GroundTrack: track,
		GroundSpeed: gs,
		Altitude:    alt,
	}
}

// northboundPlan is three fixes on the 73W meridian, 30 nm apart.
func northboundPlan() *av.FlightPlan {
	return &av.FlightPlan{
		Waypoints: []av.Waypoint{
			{Fix: "AAA", Location: math.MakePoint2LL(40, -73)},
			{Fix: "BBB", Location: math.MakePoint2LL(40.5, -73)},
			{Fix: "CCC", Location: math.MakePoint2LL(41, -73)},
		},
	}
}

func TestInvalidAircraftState(t *testing.T) {
	nav := makeTestNav(t)
	s := ac(40, -73, 0, 150, 5000)
	s.Altitude = math.Sqrt(-1) // NaN

	out := nav.Update(s, [2]RadioSample{}, testStart)
	if out.Valid {
		t.Errorf("output should be invalid for a NaN aircraft state")
	}
	if out.Guidance.SignalValid {
		t.Errorf("guidance should flag off for an invalid state")
	}
}

func TestSequencingMonotonic(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}

	// Fly up the meridian through all three fixes.
	seen := make(map[string]bool)
	prevIndex := 0
	simTime := testStart
	for lat := float32(39.9); lat < 41.1; lat += 0.01 {
		out := nav.Update(ac(lat, -73, 0, 300, 9000), [2]RadioSample{}, simTime)
		simTime = simTime.Add(time.Second)

		if out.Sequence.ActiveIndex < prevIndex {
			t.Fatalf("active index went backwards: %d -> %d", prevIndex, out.Sequence.ActiveIndex)
		}
		prevIndex = out.Sequence.ActiveIndex
		seen[out.Sequence.ActiveFix] = true
	}

	for _, fix := range []string{"AAA", "BBB", "CCC"} {
		if !seen[fix] {
			t.Errorf("%s was never the active fix", fix)
		}
	}
	if !nav.Seq.PlanComplete {
		t.Errorf("plan should be complete after overflying the last fix")
	}
	if nav.Seq.ActiveIndex != 2 {
		t.Errorf("active index should stay on the last waypoint, got %d", nav.Seq.ActiveIndex)
	}
}

func TestSequencingSuspend(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}

	nav.Update(ac(39.9, -73, 0, 300, 9000), [2]RadioSample{}, testStart)
	if !nav.ToggleSuspend(testStart) {
		t.Fatal("expected suspension on")
	}

	// Fly well past AAA; the active fix must not change.
	simTime := testStart
	for lat := float32(39.95); lat < 40.04; lat += 0.005 {
		out := nav.Update(ac(lat, -73, 0, 300, 9000), [2]RadioSample{}, simTime)
		simTime = simTime.Add(time.Second)
		if out.Sequence.ActiveFix != "AAA" {
			t.Fatalf("sequenced to %s while suspended", out.Sequence.ActiveFix)
		}
		if !out.Sequence.Suspended {
			t.Fatalf("output should report suspension")
		}
	}

	// Resuming sequences past AAA on the next tick: just beyond the fix,
	// the bearing to it has swung behind the aircraft.
	nav.ToggleSuspend(simTime)
	out := nav.Update(ac(40.04, -73, 0, 300, 9000), [2]RadioSample{}, simTime)
	if out.Sequence.ActiveFix != "BBB" {
		t.Errorf("after resuming, active fix is %s, expected BBB", out.Sequence.ActiveFix)
	}
}

func TestDirectTo(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}
	nav.Update(ac(39.9, -73, 0, 300, 9000), [2]RadioSample{}, testStart)

	if err := nav.DirectToFix("ZZZZZ", testStart); err != ErrFixNotInRoute {
		t.Errorf("direct-to unknown fix: got %v", err)
	}
	if err := nav.DirectToFix("CCC", testStart); err != nil {
		t.Fatal(err)
	}

	out := nav.Update(ac(40.2, -73.2, 10, 300, 9000), [2]RadioSample{}, testStart)
	if out.Sequence.DirectToFix != "CCC" || out.Sequence.ActiveFix != "CCC" {
		t.Errorf("direct-to not reflected: %+v", out.Sequence)
	}

	// AAA and BBB must not sequence while the direct-to is up, even
	// though we fly right past BBB.
	out = nav.Update(ac(40.5, -73, 0, 300, 9000), [2]RadioSample{}, testStart)
	if out.Sequence.ActiveFix != "CCC" {
		t.Errorf("sequenced to %s during direct-to", out.Sequence.ActiveFix)
	}

	// Arriving at CCC (the last fix) completes the plan.
	out = nav.Update(ac(40.999, -73, 0, 300, 9000), [2]RadioSample{}, testStart)
	if out.Sequence.DirectToFix != "" {
		t.Errorf("direct-to should clear on arrival")
	}
	if !out.Sequence.PlanComplete {
		t.Errorf("plan should be complete after arriving at the final fix")
	}
}

func TestCancelDirectTo(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}
	nav.Update(ac(39.9, -73, 0, 300, 9000), [2]RadioSample{}, testStart)

	if err := nav.DirectToFix("BBB", testStart); err != nil {
		t.Fatal(err)
	}
	nav.CancelDirectTo(testStart)

	out := nav.Update(ac(39.9, -73, 0, 300, 9000), [2]RadioSample{}, testStart)
	if out.Sequence.DirectToFix != "" {
		t.Errorf("direct-to still active after cancel")
	}
	if out.Sequence.ActiveFix != "AAA" {
		t.Errorf("active fix %s after cancel, expected AAA", out.Sequence.ActiveFix)
	}
}

func TestGPSGuidanceCrossTrack(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}

	// Sequence past AAA so the active leg is AAA->BBB along the meridian.
	simTime := testStart
	for lat := float32(39.9); lat < 40.05; lat += 0.01 {
		nav.Update(ac(lat, -73, 0, 300, 9000), [2]RadioSample{}, simTime)
		simTime = simTime.Add(time.Second)
	}
	if nav.Seq.ActiveIndex != 1 {
		t.Fatalf("expected active leg to BBB, got index %d", nav.Seq.ActiveIndex)
	}

	// 0.01 degrees of longitude west of course at 40.2N is ~0.46 nm left.
	out := nav.Update(ac(40.2, -73.01, 0, 300, 9000), [2]RadioSample{}, simTime)
	g := out.Guidance

	if !g.SignalValid || g.ToFrom != FlagTo {
		t.Errorf("GPS guidance should be valid and TO: %+v", g)
	}
	if math.HeadingDifference(g.Course, 0) > 1 {
		t.Errorf("leg course %.1f, expected ~000", g.Course)
	}
	if g.CrossTrackNM > -0.4 || g.CrossTrackNM < -0.52 {
		t.Errorf("cross track %.3f nm, expected ~-0.46 (left of course)", g.CrossTrackNM)
	}
	wantDefl := g.CrossTrackNM / 5 // enroute full scale
	if math.Abs(g.Deflection-wantDefl) > 0.005 {
		t.Errorf("deflection %.3f, expected %.3f", g.Deflection, wantDefl)
	}

	// Approach scale pegs the needle at the same cross-track error.
	if err := nav.SetFlightPhase(config.PhaseApproach, simTime); err != nil {
		t.Fatal(err)
	}
	out = nav.Update(ac(40.2, -73.01, 0, 300, 9000), [2]RadioSample{}, simTime)
	if out.Guidance.Deflection != -1 {
		t.Errorf("deflection %.3f on the approach scale, expected pegged at -1", out.Guidance.Deflection)
	}
}

func TestRadioGuidance(t *testing.T) {
	nav := makeTestNav(t)
	simTime := testStart

	if err := nav.SelectSource(SourceNAV1, simTime); err != nil {
		t.Fatal(err)
	}
	nav.SetCourse(123, simTime)

	gs := float32(0.7)
	radios := [2]RadioSample{
		{Deflection: 0.4, ToFrom: FlagFrom, Glideslope: gs, HasGlideslope: true, SignalStrength: 0.9},
		{Deflection: -0.2, ToFrom: FlagTo, SignalStrength: 0.9},
	}

	out := nav.Update(ac(40, -73, 90, 150, 3000), radios, simTime)
	g := out.Guidance
	if g.Course != 123 || g.Deflection != 0.4 || g.ToFrom != FlagFrom {
		t.Errorf("NAV1 guidance wrong: %+v", g)
	}
	if !g.HasGlideslope || g.Glideslope != gs {
		t.Errorf("glideslope not passed through: %+v", g)
	}

	// Weak signal: needle centered, flag off, course retained.
	radios[0].SignalStrength = 0.01
	out = nav.Update(ac(40, -73, 90, 150, 3000), radios, simTime)
	g = out.Guidance
	if g.SignalValid || g.Deflection != 0 || g.ToFrom != FlagOff {
		t.Errorf("weak signal should flag off: %+v", g)
	}
	if g.Course != 123 {
		t.Errorf("OBS course lost on weak signal: %.0f", g.Course)
	}

	// NAV2 has its own OBS.
	if err := nav.SelectSource(SourceNAV2, simTime); err != nil {
		t.Fatal(err)
	}
	nav.SetCourse(300, simTime)
	nav.AdjustCourse(-10, simTime)
	out = nav.Update(ac(40, -73, 90, 150, 3000), radios, simTime)
	if out.Guidance.Course != 290 || out.Guidance.Deflection != -0.2 {
		t.Errorf("NAV2 guidance wrong: %+v", out.Guidance)
	}

	// Switching back to NAV1 restores its course setting.
	if err := nav.SelectSource(SourceNAV1, simTime); err != nil {
		t.Fatal(err)
	}
	radios[0].SignalStrength = 0.9
	out = nav.Update(ac(40, -73, 90, 150, 3000), radios, simTime)
	if out.Guidance.Course != 123 {
		t.Errorf("NAV1 OBS course not retained across source switches: %.0f", out.Guidance.Course)
	}
}

func TestSourceSwitchIdempotent(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}
	state := ac(39.9, -73.01, 0, 300, 9000)

	before := nav.Update(state, [2]RadioSample{}, testStart)

	// GPS -> NAV1 -> GPS must reproduce identical GPS guidance.
	nav.SelectSource(SourceNAV1, testStart)
	nav.Update(state, [2]RadioSample{}, testStart)
	nav.SelectSource(SourceGPS, testStart)
	after := nav.Update(state, [2]RadioSample{}, testStart)

	if before.Guidance != after.Guidance {
		t.Errorf("GPS guidance changed across source switches:\n%+v\n%+v", before.Guidance, after.Guidance)
	}
}

func TestCommandValidation(t *testing.T) {
	nav := makeTestNav(t)

	if err := nav.ActivateLeg(0, testStart); err != ErrNoFlightPlan {
		t.Errorf("ActivateLeg without a plan: got %v", err)
	}
	if err := nav.DirectToFix("AAA", testStart); err != ErrNoFlightPlan {
		t.Errorf("DirectToFix without a plan: got %v", err)
	}
	if err := nav.ToggleHold(testStart); err != ErrNoActiveLeg {
		t.Errorf("ToggleHold without a plan: got %v", err)
	}
	if err := nav.SetFlightPhase("cruise", testStart); err != ErrUnknownPhase {
		t.Errorf("unknown flight phase: got %v", err)
	}
	if err := nav.SetFlightPlan(&av.FlightPlan{}, testStart); err != ErrEmptyFlightPlan {
		t.Errorf("empty plan: got %v", err)
	}
	if err := nav.SetFlightPlan(&av.FlightPlan{
		Waypoints: []av.Waypoint{{Fix: "bad fix"}},
	}, testStart); err != ErrInvalidFix {
		t.Errorf("invalid fix name: got %v", err)
	}

	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}
	if err := nav.ActivateLeg(7, testStart); err != ErrInvalidLegIndex {
		t.Errorf("out of range leg: got %v", err)
	}
	if err := nav.ActivateLeg(2, testStart); err != nil {
		t.Fatal(err)
	}
	if nav.Seq.ActiveIndex != 2 {
		t.Errorf("active index %d after ActivateLeg(2)", nav.Seq.ActiveIndex)
	}

	nav.SetDescentAngle(10, testStart)
	if nav.VNav.DescentAngleDeg != config.MaxDescentAngleDeg {
		t.Errorf("descent angle %f, expected clamp to %d", nav.VNav.DescentAngleDeg, config.MaxDescentAngleDeg)
	}
}

func TestSnapshotRestore(t *testing.T) {
	nav := makeTestNav(t)
	if err := nav.SetFlightPlan(northboundPlan(), testStart); err != nil {
		t.Fatal(err)
	}
	nav.Update(ac(39.9, -73, 0, 300, 9000), [2]RadioSample{}, testStart)
	if err := nav.DirectToFix("BBB", testStart); err != nil {
		t.Fatal(err)
	}
	nav.SetVNavEnabled(true, testStart)

	snap := nav.TakeSnapshot()

	nav.CancelDirectTo(testStart)
	nav.ToggleSuspend(testStart)
	nav.SetVNavEnabled(false, testStart)
	if err := nav.ActivateLeg(2, testStart); err != nil {
		t.Fatal(err)
	}

	nav.RestoreSnapshot(snap)

	if nav.Seq.DirectTo == nil || nav.Seq.DirectTo.Waypoint.Fix != "BBB" {
		t.Errorf("direct-to not restored: %+v", nav.Seq.DirectTo)
	}
	if nav.Seq.Suspended {
		t.Errorf("suspension should have been rolled back")
	}
	if nav.Seq.ActiveIndex != 0 {
		t.Errorf("active index %d after restore, expected 0", nav.Seq.ActiveIndex)
	}
	if !nav.VNav.Enabled {
		t.Errorf("VNAV enable should have been restored")
	}
}
