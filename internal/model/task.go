package model

import "time"

// Weekday names as stored in week keys and task records.
var WeekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayIndex returns the 0-based index of a weekday name (0 = Sunday),
// or -1 when the name is not one of the seven weekdays.
func WeekdayIndex(day string) int {
	for i, name := range WeekdayNames {
		if name == day {
			return i
		}
	}
	return -1
}

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task creators.
const (
	CreatedByUser      = "user"
	CreatedByAssistant = "assistant"
)

// Task represents a single item in the planner. Field names follow the
// remote store's JSON contract.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Day         string `json:"day"`

	// Time carries the legacy representation: a single "HH:MM" or a
	// "HH:MM-HH:MM" range. StartTime/EndTime take precedence when set.
	Time      string `json:"time,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`

	Priority string `json:"priority"`
	Color    string `json:"color,omitempty"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// WeekOffset places the task relative to the current calendar week,
	// independent of today.
	WeekOffset int    `json:"weekOffset"`
	CreatedBy  string `json:"createdBy,omitempty"`

	// Class-schedule bookkeeping. AbsoluteDate pins generated tasks to the
	// calendar week of a concrete date so they do not drift on reload.
	IsClassTask  bool   `json:"isClassTask,omitempty"`
	ClassID      string `json:"classId,omitempty"`
	AbsoluteDate string `json:"absoluteDate,omitempty"`

	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DueTime returns the time-of-day reminders fire against: the end of the
// task's window when known, otherwise its start. Empty when the task has
// neither.
func (t Task) DueTime() string {
	if t.EndTime != "" {
		return t.EndTime
	}
	return t.StartTime
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Day         *string    `json:"day,omitempty"`
	Time        *string    `json:"time,omitempty"`
	StartTime   *string    `json:"startTime,omitempty"`
	EndTime     *string    `json:"endTime,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Color       *string    `json:"color,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Apply copies the set fields of the patch onto the task.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Day != nil {
		t.Day = *p.Day
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
		t.CompletedAt = p.CompletedAt
	}
}
