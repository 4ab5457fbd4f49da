// cmd/gpsnav/scenario.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	av "github.com/avionicsim/gpsnav/aviation"
	"github.com/avionicsim/gpsnav/math"
	"github.com/avionicsim/gpsnav/nav"

	"gopkg.in/yaml.v3"
)

// Scenario is a YAML description of a replay run: where the aircraft
// starts and the route it should be guided along.
type Scenario struct {
	Name     string `yaml:"name"`
	Aircraft struct {
		Latitude      float32 `yaml:"lat"`
		Longitude     float32 `yaml:"lon"`
		Heading       float32 `yaml:"heading"`
		GroundSpeedKt float32 `yaml:"ground_speed_kt"`
		AltitudeFt    float32 `yaml:"altitude_ft"`
	} `yaml:"aircraft"`
	Plan []ScenarioWaypoint `yaml:"plan"`

	VNav            bool    `yaml:"vnav"`
	DescentAngleDeg float32 `yaml:"descent_angle_deg"`
	DurationSec     int     `yaml:"duration_sec"`
}

type ScenarioWaypoint struct {
	Fix        string  `yaml:"fix"`
	Latitude   float32 `yaml:"lat"`
	Longitude  float32 `yaml:"lon"`
	Constraint string  `yaml:"constraint"` // "8000", "8000+", "8000-"
	Hold       *struct {
		InboundCourse float32 `yaml:"inbound_course"`
		Turn          string  `yaml:"turn"` // "left" or "right"
		LegSeconds    float32 `yaml:"leg_seconds"`
	} `yaml:"hold"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(sc.Plan) == 0 {
		return nil, fmt.Errorf("%s: scenario has no flight plan", path)
	}
	if sc.Aircraft.GroundSpeedKt <= 0 {
		return nil, fmt.Errorf("%s: aircraft ground speed must be positive", path)
	}
	if sc.DurationSec <= 0 {
		sc.DurationSec = 3600
	}
	return &sc, nil
}

// parseConstraint decodes the compact crossing restriction form used in
// scenario files: a trailing "+" for at-or-above, "-" for at-or-below.
func parseConstraint(s string) (*av.AltitudeConstraint, error) {
	if s == "" {
		return nil, nil
	}

	kind := av.ConstraintAt
	if strings.HasSuffix(s, "+") {
		kind = av.ConstraintAtOrAbove
		s = strings.TrimSuffix(s, "+")
	} else if strings.HasSuffix(s, "-") {
		kind = av.ConstraintAtOrBelow
		s = strings.TrimSuffix(s, "-")
	}

	alt, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return nil, fmt.Errorf("%q: invalid altitude constraint", s)
	}
	return &av.AltitudeConstraint{Kind: kind, AltitudeFt: float32(alt)}, nil
}

// FlightPlan converts the scenario route to the core's representation.
func (sc *Scenario) FlightPlan() (*av.FlightPlan, error) {
	fp := &av.FlightPlan{Source: av.PlanImported}
	for _, swp := range sc.Plan {
		wp := av.Waypoint{
			Fix:      strings.ToUpper(swp.Fix),
			Location: math.MakePoint2LL(swp.Latitude, swp.Longitude),
		}

		c, err := parseConstraint(swp.Constraint)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", swp.Fix, err)
		}
		wp.Constraint = c

		if swp.Hold != nil {
			dir := av.TurnRight
			if swp.Hold.Turn == "left" {
				dir = av.TurnLeft
			}
			wp.Hold = &av.Hold{
				Fix:           wp.Fix,
				InboundCourse: math.NormalizeHeading(swp.Hold.InboundCourse),
				TurnDirection: dir,
				LegSeconds:    swp.Hold.LegSeconds,
			}
		}

		fp.Waypoints = append(fp.Waypoints, wp)
	}
	return fp, nil
}

// InitialState returns the aircraft state at the start of the replay.
func (sc *Scenario) InitialState() nav.AircraftState {
	return nav.AircraftState{
		Position:    math.MakePoint2LL(sc.Aircraft.Latitude, sc.Aircraft.Longitude),
		TrueHeading: math.NormalizeHeading(sc.Aircraft.Heading),
		GroundTrack: math.NormalizeHeading(sc.Aircraft.Heading),
		GroundSpeed: sc.Aircraft.GroundSpeedKt,
		Altitude:    sc.Aircraft.AltitudeFt,
	}
}
