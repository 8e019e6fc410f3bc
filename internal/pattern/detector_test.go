package pattern

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"week-planner/internal/model"
	"week-planner/internal/store"
	"week-planner/internal/weekkey"
)

// Wednesday, 2026-08-26 12:00.
var testNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

// memStore is a minimal in-memory TaskStore for the detector.
type memStore struct {
	tasks map[string][]model.Task
	fail  bool
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[string][]model.Task)}
}

func (m *memStore) add(day string, offset int, task model.Task) {
	task.Day = day
	task.WeekOffset = offset
	key := weekkey.Key(testNow, day, offset)
	m.tasks[key] = append(m.tasks[key], task)
}

func (m *memStore) Snapshot() map[string][]model.Task {
	out := make(map[string][]model.Task, len(m.tasks))
	for k, v := range m.tasks {
		out[k] = append([]model.Task(nil), v...)
	}
	return out
}

func (m *memStore) HasTask(day string, weekOffset int, title, timeStr string) bool {
	key := weekkey.Key(testNow, day, weekOffset)
	want := strings.ToLower(strings.TrimSpace(title))
	for _, task := range m.tasks[key] {
		if strings.ToLower(strings.TrimSpace(task.Title)) == want && task.Time == timeStr {
			return true
		}
	}
	return false
}

func (m *memStore) CreateWithWeekOffset(ctx context.Context, draft model.Task) (model.Task, store.SyncStatus, error) {
	if m.fail {
		return model.Task{}, store.SyncRemote, errors.New("remote down")
	}
	draft.ID = fmt.Sprintf("gen-%d", len(m.tasks)+1)
	m.add(draft.Day, draft.WeekOffset, draft)
	return draft, store.SyncRemote, nil
}

func newDetector(s TaskStore) *Detector {
	d := New(s, zap.NewNop().Sugar())
	d.SetClock(func() time.Time { return testNow })
	return d
}

func TestAnalyzeFindsWeeklyRepetition(t *testing.T) {
	ms := newMemStore()
	ms.add("Wednesday", 0, model.Task{Title: "Gym", Time: "18:00", Color: "green", Priority: "high"})
	ms.add("Wednesday", -1, model.Task{Title: " gym ", Time: "18:00"})
	// Same title at a different time does not count toward the pair.
	ms.add("Wednesday", -1, model.Task{Title: "Gym", Time: "07:00"})
	// Untimed tasks never participate.
	ms.add("Wednesday", 0, model.Task{Title: "Laundry"})

	got := newDetector(ms).Analyze(0, 2, 2)
	assert.Len(t, got, 1)
	assert.Equal(t, "Gym", got[0].Title)
	assert.Equal(t, "18:00", got[0].Time)
	assert.Equal(t, "Wednesday", got[0].Day)
	assert.Equal(t, 2, got[0].Occurrences)
	assert.Equal(t, "high", got[0].Priority, "representative sample from the matching day")
}

func TestAnalyzeBelowThreshold(t *testing.T) {
	ms := newMemStore()
	ms.add("Wednesday", 0, model.Task{Title: "Gym", Time: "18:00"})
	assert.Empty(t, newDetector(ms).Analyze(0, 2, 2))
}

func TestAnalyzeCountsPerWeekday(t *testing.T) {
	ms := newMemStore()
	// Same signature on two different weekdays, once each: no pair.
	ms.add("Monday", 0, model.Task{Title: "Run", Time: "06:30"})
	ms.add("Thursday", -1, model.Task{Title: "Run", Time: "06:30"})
	assert.Empty(t, newDetector(ms).Analyze(0, 2, 2))
}

func TestAnalyzeScansBackwardFromViewedWeek(t *testing.T) {
	ms := newMemStore()
	ms.add("Friday", 3, model.Task{Title: "Review", Time: "16:00"})
	ms.add("Friday", 2, model.Task{Title: "Review", Time: "16:00"})

	assert.Empty(t, newDetector(ms).Analyze(0, 2, 2), "future weeks invisible from the current view")
	assert.Len(t, newDetector(ms).Analyze(3, 2, 2), 1)
}

func TestAnalyzeOrdersSuggestions(t *testing.T) {
	ms := newMemStore()
	ms.add("Friday", 0, model.Task{Title: "Review", Time: "16:00"})
	ms.add("Friday", -1, model.Task{Title: "Review", Time: "16:00"})
	ms.add("Monday", 0, model.Task{Title: "Run", Time: "06:30"})
	ms.add("Monday", -1, model.Task{Title: "Run", Time: "06:30"})

	got := newDetector(ms).Analyze(0, 2, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "Monday", got[0].Day)
	assert.Equal(t, "Friday", got[1].Day)
}

func TestApplyIsIdempotent(t *testing.T) {
	ms := newMemStore()
	ms.add("Wednesday", 0, model.Task{Title: "Gym", Time: "18:00"})
	ms.add("Wednesday", -1, model.Task{Title: "Gym", Time: "18:00"})

	d := newDetector(ms)
	suggestions := d.Analyze(0, 2, 2)
	assert.Len(t, suggestions, 1)

	added, err := d.Apply(context.Background(), suggestions, 0, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, added, "one task per projected week")
	assert.True(t, ms.HasTask("Wednesday", 1, "gym", "18:00"))
	assert.True(t, ms.HasTask("Wednesday", 2, "gym", "18:00"))

	added, err = d.Apply(context.Background(), suggestions, 0, 2)
	assert.NoError(t, err)
	assert.Zero(t, added, "second application adds nothing")
}

func TestApplySkipsWeeksAlreadyCovered(t *testing.T) {
	ms := newMemStore()
	ms.add("Wednesday", 1, model.Task{Title: "GYM", Time: "18:00"})

	d := newDetector(ms)
	added, err := d.Apply(context.Background(), []Suggestion{{Title: "Gym", Time: "18:00", Day: "Wednesday"}}, 0, 2)
	assert.NoError(t, err)
	assert.Equal(t, 1, added, "only the uncovered week gets a task")
}

func TestApplyStopsOnStoreError(t *testing.T) {
	ms := newMemStore()
	ms.fail = true

	d := newDetector(ms)
	added, err := d.Apply(context.Background(), []Suggestion{{Title: "Gym", Time: "18:00", Day: "Wednesday"}}, 0, 2)
	assert.Error(t, err)
	assert.Zero(t, added)
}
