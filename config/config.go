// config/config.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/avionicsim/gpsnav/math"
	"github.com/avionicsim/gpsnav/util"

	"gopkg.in/yaml.v3"
)

const (
	MinDescentAngleDeg = 1
	MaxDescentAngleDeg = 6
)

// Config holds the guidance core's tunables. Out-of-range values are
// clamped by Validate rather than rejected so that a bad config file can
// never leave the core in an unusable state.
type Config struct {
	// Descent angle for VNAV path construction, degrees.
	DescentAngleDeg float32 `yaml:"descent_angle_deg"`
	// Distance before the top-of-descent point at which the TOD alert is
	// raised, nm.
	TodLookaheadNM float32 `yaml:"tod_lookahead_nm"`

	// Full-scale course deviation per flight phase, nm.
	CDIFullScaleNM map[string]float32 `yaml:"cdi_full_scale_nm"`

	// Waypoint-passage detection: the proximity threshold is ground speed
	// times the look-ahead time, clamped to [min, max] nm.
	SequenceLookaheadSec    float32    `yaml:"sequence_lookahead_sec"`
	SequenceProximityNM     [2]float32 `yaml:"sequence_proximity_nm"`
	SequencePassedCourseDeg float32    `yaml:"sequence_passed_course_deg"`

	// Holding pattern defaults for fixes without a charted hold.
	HoldLegSeconds    float32 `yaml:"hold_leg_seconds"`
	HoldTurnDirection string  `yaml:"hold_turn_direction"` // "left" or "right"

	// Below this relative signal strength a radio source is flagged
	// invalid.
	RadioSignalThreshold float32 `yaml:"radio_signal_threshold"`
}

const (
	PhaseEnroute  = "enroute"
	PhaseTerminal = "terminal"
	PhaseApproach = "approach"
)

func Default() Config {
	return Config{
		DescentAngleDeg: 3,
		TodLookaheadNM:  2,
		CDIFullScaleNM: map[string]float32{
			PhaseEnroute:  5,
			PhaseTerminal: 1,
			PhaseApproach: 0.3,
		},
		SequenceLookaheadSec:    10,
		SequenceProximityNM:     [2]float32{0.25, 2},
		SequencePassedCourseDeg: 100,
		HoldLegSeconds:          60,
		HoldTurnDirection:       "right",
		RadioSignalThreshold:    0.1,
	}
}

// Load reads a YAML config file, applying its values over the defaults.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate clamps numeric tunables to their legal ranges and rejects
// structurally unusable configurations.
func (c *Config) Validate() error {
	c.DescentAngleDeg = math.Clamp(c.DescentAngleDeg, MinDescentAngleDeg, MaxDescentAngleDeg)
	c.TodLookaheadNM = math.Clamp(c.TodLookaheadNM, 0, 50)
	c.SequenceLookaheadSec = math.Clamp(c.SequenceLookaheadSec, 1, 60)
	c.SequencePassedCourseDeg = math.Clamp(c.SequencePassedCourseDeg, 90, 175)
	c.HoldLegSeconds = math.Clamp(c.HoldLegSeconds, 30, 240)
	c.RadioSignalThreshold = math.Clamp(c.RadioSignalThreshold, 0, 1)

	if c.SequenceProximityNM[0] <= 0 || c.SequenceProximityNM[1] < c.SequenceProximityNM[0] {
		return fmt.Errorf("sequence_proximity_nm: invalid range %v", c.SequenceProximityNM)
	}

	if len(c.CDIFullScaleNM) == 0 {
		return fmt.Errorf("cdi_full_scale_nm: no flight phases defined")
	}
	for phase, scale := range c.CDIFullScaleNM {
		if scale <= 0 {
			return fmt.Errorf("cdi_full_scale_nm: %s: full scale must be positive", phase)
		}
	}

	switch c.HoldTurnDirection {
	case "left", "right":
	default:
		return fmt.Errorf("hold_turn_direction: %q is not \"left\" or \"right\"", c.HoldTurnDirection)
	}

	return nil
}

// FullScale returns the CDI full-scale deflection in nm for the given
// flight phase.
func (c Config) FullScale(phase string) (float32, bool) {
	s, ok := c.CDIFullScaleNM[phase]
	return s, ok
}

// Phases returns the configured flight phase names, sorted.
func (c Config) Phases() []string {
	return util.SortedMapKeys(c.CDIFullScaleNM)
}
