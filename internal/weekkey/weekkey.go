// Package weekkey derives the string keys that partition tasks by calendar
// week and weekday. A key looks like "2026-08-23-Monday": the date part is
// the Sunday starting the week, the suffix the weekday the tasks belong to.
package weekkey

import (
	"fmt"
	"strings"
	"time"

	"week-planner/internal/model"
)

const dateLayout = "2006-01-02"

// Key returns the week key for the given weekday name and signed week
// offset, anchored at the week containing now. Callers must snapshot now
// once per operation so every key in that operation agrees on "today".
func Key(now time.Time, day string, offset int) string {
	weekStart := WeekStart(now, offset)
	return weekStart.Format(dateLayout) + "-" + day
}

// KeyForDate returns the key for the week containing date, ignoring today.
// Used for absolute-dated tasks such as generated class sessions.
func KeyForDate(date time.Time, day string) string {
	weekStart := date.AddDate(0, 0, -int(date.Weekday()))
	return weekStart.Format(dateLayout) + "-" + day
}

// WeekStart returns midnight of the Sunday starting the week offset weeks
// away from the week containing now.
func WeekStart(now time.Time, offset int) time.Time {
	start := now.AddDate(0, 0, -int(now.Weekday())+offset*7)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
}

// Parse splits a week key into its week-start date and weekday name.
func Parse(key string) (time.Time, string, error) {
	parts := strings.SplitN(key, "-", 4)
	if len(parts) != 4 {
		return time.Time{}, "", fmt.Errorf("malformed week key %q", key)
	}
	date, err := time.Parse(dateLayout, strings.Join(parts[:3], "-"))
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed week key %q: %w", key, err)
	}
	day := parts[3]
	if model.WeekdayIndex(day) < 0 {
		return time.Time{}, "", fmt.Errorf("malformed week key %q: unknown weekday", key)
	}
	return date, day, nil
}
