// aviation/hold.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"

	"github.com/avionicsim/gpsnav/math"
)

// TurnDirection specifies the direction of turns in a holding pattern.
type TurnDirection int

const (
	TurnRight TurnDirection = iota // standard holds are right turns
	TurnLeft
	// TurnClosest is only used as a guidance hint; holds themselves are
	// always left or right.
	TurnClosest
)

func (t TurnDirection) String() string {
	return []string{"right", "left", "closest"}[int(t)]
}

const (
	MinHoldLegSeconds     = 30
	MaxHoldLegSeconds     = 240
	DefaultHoldLegSeconds = 60
)

// Hold describes a holding pattern at a fix.
type Hold struct {
	Fix           string  // fix identifier where the hold is located
	InboundCourse float32 // inbound true course to the fix
	TurnDirection TurnDirection
	LegSeconds    float32 // straight-leg duration; 0 means the default
}

func (h Hold) DisplayName() string {
	return fmt.Sprintf("%s (%s, %.0f s)", h.Fix, h.TurnDirection, h.LegTime())
}

// LegTime returns the straight-leg duration in seconds, clamped to the
// allowed range.
func (h Hold) LegTime() float32 {
	if h.LegSeconds == 0 {
		return DefaultHoldLegSeconds
	}
	return math.Clamp(h.LegSeconds, MinHoldLegSeconds, MaxHoldLegSeconds)
}

type HoldEntry int

const (
	HoldEntryDirect HoldEntry = iota
	HoldEntryParallel
	HoldEntryTeardrop
)

func (e HoldEntry) String() string {
	return []string{"direct", "parallel", "teardrop"}[int(e)]
}

// Entry classifies the entry procedure for an aircraft whose bearing to
// the hold fix is headingToFix.
//
// The dividing line is 70 degrees from the outbound course on the holding
// side, which creates three sectors measured from the outbound course:
// parallel covers 110 degrees on the holding side, teardrop 70 degrees on
// the non-holding side, and direct the remaining 180. Sector boundaries
// are inclusive and tested parallel first, then teardrop, so a bearing
// exactly on a shared boundary resolves to the earlier of the two.
func (h Hold) Entry(headingToFix float32) HoldEntry {
	outboundCourse := math.OppositeHeading(h.InboundCourse)

	if h.TurnDirection == TurnRight {
		// Right turns: holding side is clockwise from outbound.
		if math.IsHeadingBetween(headingToFix, outboundCourse, outboundCourse+110) {
			return HoldEntryParallel
		} else if math.IsHeadingBetween(headingToFix, outboundCourse-70, outboundCourse) {
			return HoldEntryTeardrop
		}
		return HoldEntryDirect
	}

	// Left turns: holding side is counter-clockwise from outbound.
	if math.IsHeadingBetween(headingToFix, outboundCourse-110, outboundCourse) {
		return HoldEntryParallel
	} else if math.IsHeadingBetween(headingToFix, outboundCourse, outboundCourse+70) {
		return HoldEntryTeardrop
	}
	return HoldEntryDirect
}
