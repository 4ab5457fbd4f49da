// aviation/aviation.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/avionicsim/gpsnav/math"
)

///////////////////////////////////////////////////////////////////////////
// AltitudeConstraint

type ConstraintKind int

const (
	ConstraintAt ConstraintKind = iota
	ConstraintAtOrAbove
	ConstraintAtOrBelow
)

func (k ConstraintKind) String() string {
	return []string{"at", "at or above", "at or below"}[k]
}

// AltitudeConstraint is a crossing restriction attached to a waypoint.
type AltitudeConstraint struct {
	Kind       ConstraintKind
	AltitudeFt float32
}

// TargetAltitude returns the altitude used for descent planning: the
// boundary value of the constraint in all three cases.
func (c AltitudeConstraint) TargetAltitude() float32 {
	return c.AltitudeFt
}

// Satisfied reports whether the given altitude meets the constraint,
// within a 100 ft tolerance band for "at".
func (c AltitudeConstraint) Satisfied(altFt float32) bool {
	switch c.Kind {
	case ConstraintAtOrAbove:
		return altFt >= c.AltitudeFt-100
	case ConstraintAtOrBelow:
		return altFt <= c.AltitudeFt+100
	default:
		return math.Abs(altFt-c.AltitudeFt) <= 100
	}
}

func (c AltitudeConstraint) Encoded() string {
	switch c.Kind {
	case ConstraintAtOrAbove:
		return fmt.Sprintf("%.0f+", c.AltitudeFt)
	case ConstraintAtOrBelow:
		return fmt.Sprintf("%.0f-", c.AltitudeFt)
	default:
		return fmt.Sprintf("%.0f", c.AltitudeFt)
	}
}

///////////////////////////////////////////////////////////////////////////
// Waypoint / FlightPlan

// Waypoint is a fix in a flight plan. Waypoints are immutable once part
// of a FlightPlan; replacing the plan replaces the whole sequence.
type Waypoint struct {
	Fix        string // 1-5 alphanumeric characters
	Location   math.Point2LL
	Constraint *AltitudeConstraint
	Hold       *Hold // non-nil marks a holding fix

	// Great-circle distance from the preceding waypoint in the plan, nm;
	// zero for the first waypoint. Set by FlightPlan.InitializeLegs.
	DistanceFromPrevious float32
}

// ValidFixName reports whether s is a legal fix identifier: one to five
// alphanumeric characters.
func ValidFixName(s string) bool {
	if len(s) == 0 || len(s) > 5 {
		return false
	}
	for _, ch := range s {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
			return false
		}
	}
	return true
}

type PlanSource int

const (
	PlanManual PlanSource = iota
	PlanImported
	PlanProcedure
)

func (s PlanSource) String() string {
	return []string{"manual", "imported", "procedure"}[s]
}

// FlightPlan is an ordered sequence of waypoints in flight order. It is
// owned by the host; the guidance core only reads it and tracks its own
// active index separately.
type FlightPlan struct {
	Waypoints      []Waypoint
	Source         PlanSource
	CruiseAltitude float32 // feet, 0 if unset
}

// InitializeLegs fills in each waypoint's DistanceFromPrevious from the
// waypoint locations.
func (fp *FlightPlan) InitializeLegs() {
	for i := range fp.Waypoints {
		if i == 0 {
			fp.Waypoints[i].DistanceFromPrevious = 0
		} else {
			fp.Waypoints[i].DistanceFromPrevious =
				math.NMDistance2LL(fp.Waypoints[i-1].Location, fp.Waypoints[i].Location)
		}
	}
}

// DistanceBetween returns the along-route distance in nm from waypoint
// index from to waypoint index to.
func (fp *FlightPlan) DistanceBetween(from, to int) float32 {
	var d float32
	for i := from + 1; i <= to && i < len(fp.Waypoints); i++ {
		d += fp.Waypoints[i].DistanceFromPrevious
	}
	return d
}

// NextConstrainedIndex returns the index of the first waypoint at or
// after from that carries an altitude constraint, or -1 if none remains.
func (fp *FlightPlan) NextConstrainedIndex(from int) int {
	for i := max(from, 0); i < len(fp.Waypoints); i++ {
		if fp.Waypoints[i].Constraint != nil {
			return i
		}
	}
	return -1
}

// Encode returns the route in a compact single-line form for logging,
// e.g. "MERIT/10000 ORW HTO/8000+".
func (fp *FlightPlan) Encode() string {
	var sb strings.Builder
	for i, wp := range fp.Waypoints {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(wp.Fix)
		if wp.Constraint != nil {
			sb.WriteByte('/')
			sb.WriteString(wp.Constraint.Encoded())
		}
		if wp.Hold != nil {
			sb.WriteString("/H")
		}
	}
	return sb.String()
}
