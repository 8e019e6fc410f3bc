package model

// UserSettings holds notification preferences and housekeeping knobs.
// Field names follow the remote settings endpoint.
type UserSettings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Email                string `json:"notification_email,omitempty"`
	Phone                string `json:"phone_number,omitempty"`

	// ReminderLeadTimes lists minute offsets before a task's due time,
	// largest first.
	ReminderLeadTimes []int `json:"custom_reminder_times"`

	// DailySummaryTime is the "HH:MM" wall-clock time of the daily summary.
	DailySummaryTime string `json:"daily_summary_time"`

	AutoCleanup  bool `json:"auto_cleanup"`
	CleanupWeeks int  `json:"cleanup_weeks"`

	Theme string `json:"theme,omitempty"`
}

// DefaultSettings returns the settings applied before any remote or mirrored
// copy is loaded.
func DefaultSettings() UserSettings {
	return UserSettings{
		ReminderLeadTimes: []int{300, 60, 30},
		DailySummaryTime:  "23:30",
		CleanupWeeks:      2,
	}
}

// Normalize fills gaps left by a partial remote payload.
func (s *UserSettings) Normalize() {
	if len(s.ReminderLeadTimes) == 0 {
		s.ReminderLeadTimes = []int{300, 60, 30}
	}
	if s.DailySummaryTime == "" {
		s.DailySummaryTime = "23:30"
	}
	if s.CleanupWeeks <= 0 {
		s.CleanupWeeks = 2
	}
}
