// cmd/gpsnav/main.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// gpsnav replays a scenario file through the guidance core: a simple
// kinematic aircraft chases the core's lateral and vertical commands
// while the per-tick outputs are printed and optionally recorded.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/avionicsim/gpsnav/config"
	"github.com/avionicsim/gpsnav/log"
	"github.com/avionicsim/gpsnav/math"
	"github.com/avionicsim/gpsnav/nav"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

type options struct {
	ConfigPath    string
	ScenarioPath  string
	RecordPath    string
	LogDir        string
	UnitID        string
	PrintInterval int
	Verbose       bool
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "gpsnav",
		Short: "GPS navigator guidance core replay",
		Long: `gpsnav runs the guidance core against a scenario file: a flight plan
plus an initial aircraft state. A kinematic aircraft model follows the
core's commanded course and vertical speed at one tick per simulated
second, so the output shows sequencing, CDI, VNAV, and hold behavior
along the whole route.

Example usage:
  gpsnav --scenario approach.yaml --record ticks.msgpack -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML); defaults apply if unset")
	rootCmd.Flags().StringVarP(&opts.ScenarioPath, "scenario", "s", "", "Scenario file (YAML, required)")
	rootCmd.Flags().StringVarP(&opts.RecordPath, "record", "r", "", "Record per-tick outputs to this msgpack file")
	rootCmd.Flags().StringVarP(&opts.LogDir, "log-dir", "l", ".", "Log directory")
	rootCmd.Flags().StringVar(&opts.UnitID, "unit", "GPS1", "Unit ID used in logs")
	rootCmd.Flags().IntVar(&opts.PrintInterval, "print-interval", 10, "Seconds between progress lines")
	rootCmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")
	rootCmd.MarkFlagRequired("scenario")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// TickRecord is one replay tick in the recording file.
type TickRecord struct {
	TimeSec  int     `msgpack:"t"`
	Lat      float32 `msgpack:"lat"`
	Lon      float32 `msgpack:"lon"`
	Track    float32 `msgpack:"trk"`
	Altitude float32 `msgpack:"alt"`

	ActiveFix    string  `msgpack:"fix"`
	DistanceNM   float32 `msgpack:"dist"`
	CrossTrackNM float32 `msgpack:"xtk"`
	Deflection   float32 `msgpack:"defl"`
	VNavMode     string  `msgpack:"vnav"`
	HoldState    string  `msgpack:"hold,omitempty"`
}

func runReplay(opts options) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	lg := log.New(level, opts.LogDir)

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return err
		}
	}

	sc, err := LoadScenario(opts.ScenarioPath)
	if err != nil {
		return err
	}
	fp, err := sc.FlightPlan()
	if err != nil {
		return err
	}

	var rec *msgpack.Encoder
	if opts.RecordPath != "" {
		f, err := os.Create(opts.RecordPath)
		if err != nil {
			return fmt.Errorf("failed to create recording: %w", err)
		}
		defer f.Close()
		rec = msgpack.NewEncoder(f)
	}

	simTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	unit := nav.MakeNav(opts.UnitID, cfg, lg)
	if err := unit.SetFlightPlan(fp, simTime); err != nil {
		return err
	}
	unit.SetVNavEnabled(sc.VNav, simTime)
	if sc.DescentAngleDeg != 0 {
		unit.SetDescentAngle(sc.DescentAngleDeg, simTime)
	}

	fmt.Printf("Scenario %q: %s\n", sc.Name, fp.Encode())

	state := sc.InitialState()
	for sec := 0; sec < sc.DurationSec; sec++ {
		out := unit.Update(state, [2]nav.RadioSample{}, simTime)
		if !out.Valid {
			return fmt.Errorf("guidance rejected the aircraft state at t=%d", sec)
		}

		if sec%opts.PrintInterval == 0 {
			printTick(sec, state, out)
		}
		if rec != nil {
			if err := rec.Encode(makeRecord(sec, state, out)); err != nil {
				return fmt.Errorf("failed to write recording: %w", err)
			}
		}

		if out.Sequence.PlanComplete {
			fmt.Printf("t=%4ds flight plan complete\n", sec)
			break
		}

		state = advanceAircraft(state, out)
		simTime = simTime.Add(time.Second)
	}

	fmt.Println(unit.Summary(simTime))
	return nil
}

// advanceAircraft is a deliberately crude 1 Hz aircraft model: it turns
// at standard rate toward the commanded course (with a small cut toward
// the courseline from the needle) and follows the VNAV path when one is
// active.
func advanceAircraft(state nav.AircraftState, out nav.Output) nav.AircraftState {
	command := state.GroundTrack
	if out.Hold != nil {
		command = out.Hold.Course
	} else if out.Guidance.SignalValid {
		command = math.NormalizeHeading(out.Guidance.Course - 30*out.Guidance.Deflection)
	}

	turn := math.HeadingSignedTurn(state.GroundTrack, command)
	turn = math.Clamp(turn, -3, 3) // standard rate, 1 s ticks
	state.GroundTrack = math.NormalizeHeading(state.GroundTrack + turn)
	state.TrueHeading = state.GroundTrack

	state.Position = math.Offset2LL(state.Position, state.GroundTrack, state.GroundSpeed/3600)

	state.VerticalSpeed = 0
	if out.VNav.Mode == nav.VNavActive {
		state.VerticalSpeed = -out.VNav.RequiredVSFpm
		target := out.VNav.TargetAltitudeFt
		state.Altitude = max(target, state.Altitude+state.VerticalSpeed/60)
	}
	return state
}

func printTick(sec int, state nav.AircraftState, out nav.Output) {
	line := fmt.Sprintf("t=%4ds %8.4f %9.4f trk=%03.0f alt=%5.0f -> %-5s %5.1fnm defl=%+.2f vnav=%s",
		sec, state.Position.Latitude(), state.Position.Longitude(), state.GroundTrack,
		state.Altitude, out.Sequence.ActiveFix, out.Sequence.DistanceNM,
		out.Guidance.Deflection, out.VNav.Mode)
	if out.Hold != nil {
		line += fmt.Sprintf(" hold=%s/%s", out.Hold.Entry, out.Hold.State)
	}
	fmt.Println(line)
}

func makeRecord(sec int, state nav.AircraftState, out nav.Output) TickRecord {
	r := TickRecord{
		TimeSec:      sec,
		Lat:          state.Position.Latitude(),
		Lon:          state.Position.Longitude(),
		Track:        state.GroundTrack,
		Altitude:     state.Altitude,
		ActiveFix:    out.Sequence.ActiveFix,
		DistanceNM:   out.Sequence.DistanceNM,
		CrossTrackNM: out.Guidance.CrossTrackNM,
		Deflection:   out.Guidance.Deflection,
		VNavMode:     out.VNav.Mode.String(),
	}
	if out.Hold != nil {
		r.HoldState = out.Hold.State.String()
	}
	return r
}
