//go:build !navlog

// nav/log_release.go
// Copyright(c) 2024-2026 gpsnav contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"time"

	av "github.com/avionicsim/gpsnav/aviation"
)

// InitNavLog is a no-op in release builds
func InitNavLog(enabled bool, categories string, unit string) {}

// NavLog is a no-op in release builds
func NavLog(unit string, simTime time.Time, category string, format string, args ...interface{}) {
}

// NavLogEnabled always returns false in release builds
func NavLogEnabled(category string) bool { return false }

// LogRoute is a no-op in release builds
func LogRoute(unit string, simTime time.Time, fp *av.FlightPlan) {}
