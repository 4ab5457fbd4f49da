//go:build navlog

// nav/log_debug.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"strings"
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
)

// Navigation logging configuration
var (
	navlogEnabled    bool
	navlogCategories map[string]bool
	navlogUnit       string // filter to only log this unit ID (empty = log all)
)

// InitNavLog initializes the navigation logging system
func InitNavLog(enabled bool, categories string, unit string) {
	navlogEnabled = enabled
	navlogCategories = make(map[string]bool)
	navlogUnit = strings.TrimSpace(unit)

	if !enabled {
		return
	}

	if categories == "" || categories == "all" {
		navlogCategories[NavLogState] = true
		navlogCategories[NavLogWaypoint] = true
		navlogCategories[NavLogVNav] = true
		navlogCategories[NavLogCommand] = true
		navlogCategories[NavLogRoute] = true
		navlogCategories[NavLogHold] = true
	} else {
		for _, cat := range strings.Split(categories, ",") {
			navlogCategories[strings.TrimSpace(cat)] = true
		}
	}
}

// NavLog logs a message with timestamp, unit ID, and category
func NavLog(unit string, simTime time.Time, category string, format string, args ...interface{}) {
	if !navlogEnabled {
		return
	}
	if !navlogCategories[category] {
		return
	}
	if navlogUnit != "" && navlogUnit != unit {
		return
	}

	// Format: [HH:MM:SS] [unit] [category] message
	timeStr := simTime.Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] [%s] [%s] %s\n", timeStr, unit, category, message)
}

// NavLogEnabled returns whether navigation logging is enabled for a given category
func NavLogEnabled(category string) bool {
	return navlogEnabled && navlogCategories[category]
}

// LogRoute logs a unit's loaded route
func LogRoute(unit string, simTime time.Time, fp *av.FlightPlan) {
	if !navlogEnabled || !navlogCategories[NavLogRoute] {
		return
	}
	if navlogUnit != "" && navlogUnit != unit {
		return
	}

	route := "(no route)"
	if fp != nil && len(fp.Waypoints) > 0 {
		route = fp.Encode()
	}

	timeStr := simTime.Format("15:04:05")
	fmt.Printf("[%s] [%s] [%s] route: %s\n", timeStr, unit, NavLogRoute, route)
}
