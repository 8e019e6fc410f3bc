// Package layout projects timed tasks onto the hour-by-day calendar grid.
// The pixel convention is 1px per minute inside 60px hour cells.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"week-planner/internal/model"
)

const (
	minDuration     = 5       // minutes; visibility floor
	defaultDuration = 60      // minutes; fallback for malformed ranges
	wrapSanityCap   = 12 * 60 // minutes; longest believable cross-midnight span
)

// Block is the rendered geometry of one task.
type Block struct {
	StartMinutes int // minutes since midnight
	Duration     int // minutes
	Hour         int // hour cell the block starts in
	Top          int // px offset within the hour cell
	Height       int // px
}

// ParseClock parses an "HH:MM" string into minutes since midnight. A bare
// hour is accepted and treated as on the hour.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute := 0
	if len(parts) == 2 && parts[1] != "" {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Resolve picks the authoritative start and end times for a task. Exactly
// one representation wins: explicit start+end, then the legacy range, then
// the legacy single time (a 1-hour block starting at it), then an end time
// alone (a 1-hour block ending at it). The single-time/end-only asymmetry
// is historical behavior and kept as-is. ok is false when the task carries
// no usable time.
func Resolve(t model.Task) (start, end string, ok bool) {
	switch {
	case t.StartTime != "" && t.EndTime != "":
		return t.StartTime, t.EndTime, true
	case strings.Contains(t.Time, "-"):
		parts := strings.SplitN(t.Time, "-", 2)
		return parts[0], parts[1], true
	case t.Time != "" && t.EndTime != "":
		return t.Time, t.EndTime, true
	case t.EndTime != "" && t.Time == "" && t.StartTime == "":
		endMin, err := ParseClock(t.EndTime)
		if err != nil {
			return "", "", false
		}
		return formatClock(endMin - 60), t.EndTime, true
	case t.Time != "":
		startMin, err := ParseClock(t.Time)
		if err != nil {
			return "", "", false
		}
		return t.Time, formatClock(startMin + 60), true
	default:
		return "", "", false
	}
}

// BlockFor computes the grid geometry for a task, or ok=false when the task
// has no resolvable time.
func BlockFor(t model.Task) (Block, bool) {
	start, end, ok := Resolve(t)
	if !ok {
		return Block{}, false
	}

	startMin, err := ParseClock(start)
	if err != nil {
		return Block{}, false
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return Block{}, false
	}

	var duration int
	if endMin >= startMin {
		duration = endMin - startMin
	} else {
		// End before start reads as crossing midnight, unless the span is
		// implausibly long, in which case the input is assumed malformed.
		wrapped := 24*60 - startMin + endMin
		if wrapped > wrapSanityCap {
			duration = defaultDuration
		} else {
			duration = wrapped
		}
	}
	if duration < minDuration {
		duration = minDuration
	}

	return Block{
		StartMinutes: startMin,
		Duration:     duration,
		Hour:         startMin / 60,
		Top:          startMin % 60,
		Height:       duration,
	}, true
}
