// Package reminder arms one-shot timers for upcoming tasks and the
// recurring daily summary.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"week-planner/internal/layout"
	"week-planner/internal/model"
	"week-planner/internal/notify"
)

// SummarySource produces the daily-summary notification content.
type SummarySource func(now time.Time) (title, body string)

// Scheduler owns every armed reminder timer. Timers are keyed
// "{taskID}-{leadMinutes}" and cancelled by key; Teardown cancels
// everything.
type Scheduler struct {
	notifier notify.Notifier
	settings func() model.UserSettings
	summary  SummarySource
	log      *zap.SugaredLogger
	now      func() time.Time

	mu           sync.Mutex
	timers       map[string]*time.Timer
	summaryTimer *time.Timer
	closed       bool
}

func New(notifier notify.Notifier, settings func() model.UserSettings, summary SummarySource, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		settings: settings,
		summary:  summary,
		log:      log,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
	}
}

// fire is one computed reminder instant for a task.
type fire struct {
	lead int
	at   time.Time
}

// fireTimes computes the reminder instants for a task: its next weekday
// occurrence combined with the due time, minus each lead. Leads whose
// instant is not strictly in the future are dropped; a task whose
// occurrence itself has passed yields nothing.
func fireTimes(task model.Task, now time.Time, leads []int) []fire {
	due := task.DueTime()
	if due == "" {
		return nil
	}
	occurrence, err := nextOccurrence(now, task.Day, due)
	if err != nil || !occurrence.After(now) {
		return nil
	}

	var fires []fire
	for _, lead := range leads {
		at := occurrence.Add(-time.Duration(lead) * time.Minute)
		if at.After(now) {
			fires = append(fires, fire{lead: lead, at: at})
		}
	}
	return fires
}

// nextOccurrence returns the next instant the given weekday reaches the
// "HH:MM" clock time, looking 0-6 days forward from now.
func nextOccurrence(now time.Time, day, clock string) (time.Time, error) {
	dayIndex := model.WeekdayIndex(day)
	if dayIndex < 0 {
		return time.Time{}, fmt.Errorf("unknown weekday %q", day)
	}
	minutes, err := layout.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	daysUntil := dayIndex - int(now.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}
	date := now.AddDate(0, 0, daysUntil)
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, now.Location()), nil
}

// ScheduleTask cancels and re-arms every reminder for the task. Completed
// tasks only get their timers cleared. The notification payload is a
// snapshot taken now, not re-validated at fire time.
func (s *Scheduler) ScheduleTask(task model.Task) {
	s.CancelTask(task.ID)
	if task.Completed {
		return
	}

	now := s.now()
	fires := fireTimes(task, now, s.settings().ReminderLeadTimes)
	if len(fires) == 0 {
		return
	}

	title := "Task Reminder"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, f := range fires {
		key := fmt.Sprintf("%s-%d", task.ID, f.lead)
		body := fmt.Sprintf("%q is due at %s on %s (%s before)", task.Title, task.DueTime(), task.Day, formatLead(f.lead))
		delay := f.at.Sub(now)
		s.timers[key] = time.AfterFunc(delay, func() {
			s.mu.Lock()
			delete(s.timers, key)
			s.mu.Unlock()
			if err := s.notifier.Notify(context.Background(), title, body); err != nil {
				s.log.Warnw("reminder delivery failed", "task", task.ID, "err", err)
			}
		})
		s.log.Debugw("reminder armed", "key", key, "at", f.at)
	}
}

// ScheduleAll arms reminders for every incomplete task.
func (s *Scheduler) ScheduleAll(tasks []model.Task) {
	for _, task := range tasks {
		if !task.Completed {
			s.ScheduleTask(task)
		}
	}
}

// CancelTask drops every armed reminder for the task id.
func (s *Scheduler) CancelTask(taskID string) {
	prefix := taskID + "-"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		if strings.HasPrefix(key, prefix) {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

// Armed returns the keys of every outstanding reminder, sorted.
func (s *Scheduler) Armed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.timers))
	for key := range s.timers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Store lifecycle hooks.

func (s *Scheduler) OnTaskCreated(task model.Task) {
	if s.settings().NotificationsEnabled {
		s.ScheduleTask(task)
	}
}

func (s *Scheduler) OnTaskUpdated(task model.Task) {
	s.CancelTask(task.ID)
	if s.settings().NotificationsEnabled && !task.Completed {
		s.ScheduleTask(task)
	}
}

func (s *Scheduler) OnTaskCompleted(taskID string) {
	s.CancelTask(taskID)
}

func (s *Scheduler) OnTaskDeleted(taskID string) {
	s.CancelTask(taskID)
}

// OnTasksReloaded replaces every armed task reminder with the new task
// set. Timers for tasks that no longer exist are dropped; the summary
// timer is left alone.
func (s *Scheduler) OnTasksReloaded(tasks []model.Task) {
	s.mu.Lock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()

	if s.settings().NotificationsEnabled {
		s.ScheduleAll(tasks)
	}
}

// ScheduleDailySummary arms the recurring summary timer: the next
// occurrence of the configured wall-clock time, today if not yet passed.
// On firing it delivers the summary and immediately re-arms for the
// following day.
func (s *Scheduler) ScheduleDailySummary() {
	now := s.now()
	at, err := nextSummaryTime(now, s.settings().DailySummaryTime)
	if err != nil {
		s.log.Warnw("daily summary not scheduled", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.summaryTimer != nil {
		s.summaryTimer.Stop()
	}
	s.summaryTimer = time.AfterFunc(at.Sub(now), func() {
		title, body := s.summary(s.now())
		if err := s.notifier.Notify(context.Background(), title, body); err != nil {
			s.log.Warnw("daily summary delivery failed", "err", err)
		}
		s.ScheduleDailySummary()
	})
	s.log.Infow("daily summary scheduled", "at", at)
}

// nextSummaryTime returns the next instant the "HH:MM" clock time occurs:
// today if still ahead, otherwise tomorrow.
func nextSummaryTime(now time.Time, clock string) (time.Time, error) {
	minutes, err := layout.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), minutes/60, minutes%60, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

// Teardown cancels every outstanding timer. The scheduler cannot be reused
// afterwards.
func (s *Scheduler) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
	if s.summaryTimer != nil {
		s.summaryTimer.Stop()
		s.summaryTimer = nil
	}
}

func formatLead(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes < 24*60:
		hours, rest := minutes/60, minutes%60
		if rest == 0 {
			if hours == 1 {
				return "1 hour"
			}
			return fmt.Sprintf("%d hours", hours)
		}
		return fmt.Sprintf("%dh %dm", hours, rest)
	default:
		days, rest := minutes/(24*60), (minutes%(24*60))/60
		if rest == 0 {
			if days == 1 {
				return "1 day"
			}
			return fmt.Sprintf("%d days", days)
		}
		return fmt.Sprintf("%dd %dh", days, rest)
	}
}
