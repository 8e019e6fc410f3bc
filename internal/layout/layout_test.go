package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"week-planner/internal/model"
)

func TestResolvePrecedence(t *testing.T) {
	cases := []struct {
		name       string
		task       model.Task
		start, end string
		ok         bool
	}{
		{"explicit start and end win", model.Task{StartTime: "09:00", EndTime: "09:15", Time: "19:00-19:30"}, "09:00", "09:15", true},
		{"legacy range", model.Task{Time: "19:00-19:30"}, "19:00", "19:30", true},
		{"legacy single becomes one hour from start", model.Task{Time: "18:00"}, "18:00", "19:00", true},
		{"end only becomes one hour ending there", model.Task{EndTime: "10:30"}, "09:30", "10:30", true},
		{"end only wraps below midnight", model.Task{EndTime: "00:30"}, "23:30", "00:30", true},
		{"legacy single wraps past midnight", model.Task{Time: "23:30"}, "23:30", "00:30", true},
		{"legacy time plus end time", model.Task{Time: "08:00", EndTime: "09:30"}, "08:00", "09:30", true},
		{"no time at all", model.Task{Title: "untimed"}, "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, ok := Resolve(tc.task)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestBlockGeometry(t *testing.T) {
	block, ok := BlockFor(model.Task{StartTime: "09:10", EndTime: "10:25"})
	assert.True(t, ok)
	assert.Equal(t, 9*60+10, block.StartMinutes)
	assert.Equal(t, 75, block.Duration)
	assert.Equal(t, 9, block.Hour)
	assert.Equal(t, 10, block.Top)
	assert.Equal(t, 75, block.Height)
}

func TestBlockDurationFloor(t *testing.T) {
	block, ok := BlockFor(model.Task{StartTime: "09:00", EndTime: "09:00"})
	assert.True(t, ok)
	assert.Equal(t, 5, block.Duration)
}

func TestBlockCrossMidnight(t *testing.T) {
	// 23:00 to 01:00 is a believable 2-hour wrap.
	block, ok := BlockFor(model.Task{StartTime: "23:00", EndTime: "01:00"})
	assert.True(t, ok)
	assert.Equal(t, 120, block.Duration)
}

func TestBlockWrapSanityCap(t *testing.T) {
	// 09:00 back to 08:00 would wrap 23 hours; treated as malformed.
	block, ok := BlockFor(model.Task{StartTime: "09:00", EndTime: "08:00"})
	assert.True(t, ok)
	assert.Equal(t, 60, block.Duration)
}

func TestBlockRejectsGarbageTimes(t *testing.T) {
	_, ok := BlockFor(model.Task{StartTime: "late", EndTime: "later"})
	assert.False(t, ok)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("07:45")
	assert.NoError(t, err)
	assert.Equal(t, 465, m)

	m, err = ParseClock("18")
	assert.NoError(t, err)
	assert.Equal(t, 1080, m)

	_, err = ParseClock("24:00")
	assert.Error(t, err)
	_, err = ParseClock("09:60")
	assert.Error(t, err)
	_, err = ParseClock("")
	assert.Error(t, err)
}
