// Package pattern detects repeating tasks across past weeks and projects
// them into upcoming weeks as recurring-task suggestions.
package pattern

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"week-planner/internal/model"
	"week-planner/internal/store"
	"week-planner/internal/weekkey"
)

// Suggestion is one inferred recurring task: the same title at the same
// time on the same weekday, seen at least the threshold number of times.
type Suggestion struct {
	Title       string
	Time        string
	Day         string
	Color       string
	Priority    string
	Description string
	Occurrences int
}

// TaskStore is the slice of the task store the detector needs.
type TaskStore interface {
	Snapshot() map[string][]model.Task
	HasTask(day string, weekOffset int, title, timeStr string) bool
	CreateWithWeekOffset(ctx context.Context, draft model.Task) (model.Task, store.SyncStatus, error)
}

// Detector scans the task mapping for repeated (title, time, weekday)
// signatures.
type Detector struct {
	store TaskStore
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(s TaskStore, log *zap.SugaredLogger) *Detector {
	return &Detector{store: s, log: log, now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (d *Detector) SetClock(now func() time.Time) { d.now = now }

func signature(title, timeStr string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "||" + timeStr
}

type tally struct {
	dayCounts map[string]int
	samples   []model.Task
}

// Analyze scans the last `weeks` weeks, counting backward from the viewed
// week offset, and returns every (title, time, weekday) combination seen
// at least minOccurrences times. Only tasks carrying the single legacy
// time field participate; untimed tasks cannot recur meaningfully.
func (d *Detector) Analyze(viewOffset, weeks, minOccurrences int) []Suggestion {
	snapshot := d.store.Snapshot()
	now := d.now()

	tallies := make(map[string]*tally)
	for weekBack := 0; weekBack < weeks; weekBack++ {
		offset := viewOffset - weekBack
		for _, day := range model.WeekdayNames {
			for _, task := range snapshot[weekkey.Key(now, day, offset)] {
				if strings.TrimSpace(task.Title) == "" || task.Time == "" {
					continue
				}
				sig := signature(task.Title, task.Time)
				entry := tallies[sig]
				if entry == nil {
					entry = &tally{dayCounts: make(map[string]int)}
					tallies[sig] = entry
				}
				entry.dayCounts[day]++
				entry.samples = append(entry.samples, task)
			}
		}
	}

	var suggestions []Suggestion
	for _, entry := range tallies {
		for day, count := range entry.dayCounts {
			if count < minOccurrences {
				continue
			}
			sample := entry.samples[0]
			for _, candidate := range entry.samples {
				if candidate.Day == day {
					sample = candidate
					break
				}
			}
			suggestions = append(suggestions, Suggestion{
				Title:       sample.Title,
				Time:        sample.Time,
				Day:         day,
				Color:       sample.Color,
				Priority:    sample.Priority,
				Description: sample.Description,
				Occurrences: count,
			})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Day != suggestions[j].Day {
			return model.WeekdayIndex(suggestions[i].Day) < model.WeekdayIndex(suggestions[j].Day)
		}
		if suggestions[i].Time != suggestions[j].Time {
			return suggestions[i].Time < suggestions[j].Time
		}
		return suggestions[i].Title < suggestions[j].Title
	})
	return suggestions
}

// Apply projects each suggestion into the next weeksForward weeks after
// the viewed offset, skipping any week that already holds a task with the
// same title and time on that weekday. Repeated application adds nothing.
// Returns the number of tasks created.
func (d *Detector) Apply(ctx context.Context, suggestions []Suggestion, viewOffset, weeksForward int) (int, error) {
	added := 0
	for _, s := range suggestions {
		for w := 1; w <= weeksForward; w++ {
			offset := viewOffset + w
			if d.store.HasTask(s.Day, offset, s.Title, s.Time) {
				continue
			}
			priority := s.Priority
			if priority == "" {
				priority = model.PriorityMedium
			}
			_, _, err := d.store.CreateWithWeekOffset(ctx, model.Task{
				Title:       s.Title,
				Description: s.Description,
				Day:         s.Day,
				Time:        s.Time,
				Color:       s.Color,
				Priority:    priority,
				WeekOffset:  offset,
			})
			if err != nil {
				return added, fmt.Errorf("apply suggestion %q: %w", s.Title, err)
			}
			added++
		}
	}
	if added > 0 {
		d.log.Infow("applied recurring-task suggestions", "created", added)
	}
	return added, nil
}
