// config/config_test.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, float32(3), c.DescentAngleDeg)
	assert.Equal(t, float32(60), c.HoldLegSeconds)

	fs, ok := c.FullScale(PhaseEnroute)
	require.True(t, ok)
	assert.Equal(t, float32(5), fs)
	fs, ok = c.FullScale(PhaseApproach)
	require.True(t, ok)
	assert.InDelta(t, 0.3, float64(fs), 1e-6)

	assert.Equal(t, []string{PhaseApproach, PhaseEnroute, PhaseTerminal}, c.Phases())
}

func TestValidateClamps(t *testing.T) {
	c := Default()
	c.DescentAngleDeg = 12
	c.HoldLegSeconds = 5
	require.NoError(t, c.Validate())

	assert.Equal(t, float32(MaxDescentAngleDeg), c.DescentAngleDeg)
	assert.Equal(t, float32(30), c.HoldLegSeconds)
}

func TestValidateRejects(t *testing.T) {
	c := Default()
	c.HoldTurnDirection = "widdershins"
	assert.Error(t, c.Validate())

	c = Default()
	c.CDIFullScaleNM["terminal"] = -1
	assert.Error(t, c.Validate())

	c = Default()
	c.SequenceProximityNM = [2]float32{2, 1}
	assert.Error(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpsnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"descent_angle_deg: 2.5\nhold_turn_direction: left\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float32(2.5), c.DescentAngleDeg)
	assert.Equal(t, "left", c.HoldTurnDirection)
	// Untouched fields keep their defaults.
	assert.Equal(t, float32(2), c.TodLookaheadNM)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
