// Package store owns the canonical in-memory task mapping, partitioned by
// week key. Every mutation goes remote-first, then mirrors locally; remote
// failure downgrades to local-only operation but never loses data already
// accepted locally. Reconciliation is last-write-wins; there are no
// revision numbers.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"week-planner/internal/model"
	"week-planner/internal/repository"
	"week-planner/internal/weekkey"
)

// RemoteClient is the slice of the remote document store the task store
// depends on.
type RemoteClient interface {
	CreateTask(ctx context.Context, task model.Task) (string, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
	BulkDeleteTasks(ctx context.Context, ids []string) error
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetSettings(ctx context.Context) (model.UserSettings, error)
	PutSettings(ctx context.Context, settings model.UserSettings) error
	GetClassSchedule(ctx context.Context) (model.ClassScheduleData, error)
	PutClassSchedule(ctx context.Context, data model.ClassScheduleData) error
}

// ReminderHooks receives task lifecycle events so reminders can be armed
// and cancelled alongside mutations. OnTasksReloaded fires after a bulk
// rebuild of the mapping (startup hydration, periodic resync) with the
// full new task set.
type ReminderHooks interface {
	OnTaskCreated(task model.Task)
	OnTaskUpdated(task model.Task)
	OnTaskCompleted(taskID string)
	OnTaskDeleted(taskID string)
	OnTasksReloaded(tasks []model.Task)
}

// Store is the session-scoped task state. One instance per application
// session; components receive it explicitly.
type Store struct {
	remote RemoteClient
	mirror *repository.MirrorRepository
	hooks  ReminderHooks
	log    *zap.SugaredLogger
	now    func() time.Time

	mu       sync.Mutex
	tasks    map[string][]model.Task
	settings model.UserSettings
	degraded bool
}

func New(remote RemoteClient, mirror *repository.MirrorRepository, log *zap.SugaredLogger) *Store {
	return &Store{
		remote:   remote,
		mirror:   mirror,
		log:      log,
		now:      time.Now,
		tasks:    make(map[string][]model.Task),
		settings: model.DefaultSettings(),
	}
}

// SetHooks wires the reminder scheduler. Must be called before mutations
// begin.
func (s *Store) SetHooks(h ReminderHooks) { s.hooks = h }

// SetClock overrides the wall clock, for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Degraded reports whether any recent remote call failed and the store is
// running on local state.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) markDegraded(op string, err error) {
	s.mu.Lock()
	s.degraded = true
	s.mu.Unlock()
	s.log.Warnw("remote call failed, continuing locally", "op", op, "err", err)
}

// prepare validates a draft and fills defaults. Each prepared task gets a
// client-assigned id; the server may replace it on first write.
func (s *Store) prepare(draft model.Task, requireDescription bool) (model.Task, error) {
	if model.WeekdayIndex(draft.Day) < 0 {
		return model.Task{}, &ValidationError{Field: "day", Reason: "must be a weekday name"}
	}
	if requireDescription && strings.TrimSpace(draft.Description) == "" {
		return model.Task{}, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if draft.StartTime != "" && draft.EndTime != "" && draft.StartTime >= draft.EndTime {
		return model.Task{}, &ValidationError{Field: "time", Reason: "start must precede end"}
	}

	task := draft
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if strings.TrimSpace(task.Title) == "" {
		task.Title = "Untitled Task"
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.CreatedBy == "" {
		task.CreatedBy = model.CreatedByUser
	}
	task.Completed = false
	task.CompletedAt = nil
	task.CreatedAt = s.now()
	return task, nil
}

// Create stores a new task remote-first. A failed remote write fails the
// whole operation: a disconnected client must see plain creates fail
// rather than silently diverge.
func (s *Store) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	task, err := s.prepare(draft, true)
	if err != nil {
		return model.Task{}, err
	}

	id, err := s.remote.CreateTask(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	task.ID = id

	now := s.now()
	key := weekkey.Key(now, task.Day, task.WeekOffset)
	s.mu.Lock()
	s.tasks[key] = append(s.tasks[key], task)
	s.degraded = false
	s.mu.Unlock()

	s.flushMirror(ctx)
	if s.hooks != nil {
		s.hooks.OnTaskCreated(task)
	}
	return task, nil
}

// CreateWithWeekOffset is the assistant/generator create path. Remote
// failure is tolerated for user-initiated tasks, which continue local-only;
// assistant-initiated tasks propagate the failure so the caller can decide
// retry policy.
func (s *Store) CreateWithWeekOffset(ctx context.Context, draft model.Task) (model.Task, SyncStatus, error) {
	task, err := s.prepare(draft, false)
	if err != nil {
		return model.Task{}, SyncRemote, err
	}

	status := SyncRemote
	id, err := s.remote.CreateTask(ctx, task)
	switch {
	case err == nil:
		task.ID = id
	case task.CreatedBy == model.CreatedByAssistant:
		return model.Task{}, SyncRemote, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	default:
		s.markDegraded("create", err)
		status = SyncLocalOnly
	}

	now := s.now()
	key := weekkey.Key(now, task.Day, task.WeekOffset)
	s.mu.Lock()
	s.tasks[key] = append(s.tasks[key], task)
	s.mu.Unlock()

	s.flushMirror(ctx)
	if s.hooks != nil {
		s.hooks.OnTaskCreated(task)
	}
	return task, status, nil
}

// locate returns the partition key and index of a task id, under lock.
func (s *Store) locate(taskID string) (string, int, bool) {
	for key, tasks := range s.tasks {
		for i, task := range tasks {
			if task.ID == taskID {
				return key, i, true
			}
		}
	}
	return "", 0, false
}

// Update patches a task remote-first. When the patched day differs the
// task moves to the new day's partition. On remote failure the patch is
// applied locally and SyncLocalOnly reported.
func (s *Store) Update(ctx context.Context, taskID string, patch model.TaskPatch) (SyncStatus, error) {
	remoteErr := s.remote.UpdateTask(ctx, taskID, patch)

	now := s.now()
	s.mu.Lock()
	key, i, found := s.locate(taskID)
	if !found {
		s.mu.Unlock()
		if remoteErr != nil {
			s.markDegraded("update", remoteErr)
			return SyncLocalOnly, ErrNotFound
		}
		s.log.Warnw("updated task missing locally", "task", taskID)
		return SyncRemote, ErrNotFound
	}

	task := s.tasks[key][i]
	oldDay := task.Day
	patch.Apply(&task)
	updatedAt := now
	task.UpdatedAt = &updatedAt

	if remoteErr == nil && task.Day != oldDay {
		// Day changed: move to the new partition.
		s.tasks[key] = append(s.tasks[key][:i], s.tasks[key][i+1:]...)
		newKey := weekkey.Key(now, task.Day, task.WeekOffset)
		s.tasks[newKey] = append(s.tasks[newKey], task)
	} else {
		s.tasks[key][i] = task
	}
	s.mu.Unlock()

	s.flushMirror(ctx)
	if remoteErr != nil {
		s.markDegraded("update", remoteErr)
		return SyncLocalOnly, nil
	}
	if s.hooks != nil {
		s.hooks.OnTaskUpdated(task)
	}
	return SyncRemote, nil
}

// Delete removes a task. The remote delete is attempted first but its
// failure is logged, not fatal: the remote copy may never have existed.
// Local removal always proceeds.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	_, _, found := s.locate(taskID)
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}

	if err := s.remote.DeleteTask(ctx, taskID); err != nil {
		s.log.Warnw("remote delete failed, removing locally anyway", "task", taskID, "err", err)
	}

	s.mu.Lock()
	if key, i, ok := s.locate(taskID); ok {
		s.tasks[key] = append(s.tasks[key][:i], s.tasks[key][i+1:]...)
	}
	s.mu.Unlock()

	s.flushMirror(ctx)
	if s.hooks != nil {
		s.hooks.OnTaskDeleted(taskID)
	}
	return nil
}

// ToggleComplete flips completion, stamping or clearing completedAt, and
// re-arms or cancels reminders accordingly. Remote-first with local
// fallback.
func (s *Store) ToggleComplete(ctx context.Context, taskID string) (SyncStatus, error) {
	s.mu.Lock()
	key, i, found := s.locate(taskID)
	if !found {
		s.mu.Unlock()
		return SyncRemote, ErrNotFound
	}
	task := s.tasks[key][i]
	s.mu.Unlock()

	completed := !task.Completed
	var completedAt *time.Time
	if completed {
		at := s.now()
		completedAt = &at
	}
	patch := model.TaskPatch{Completed: &completed, CompletedAt: completedAt}

	remoteErr := s.remote.UpdateTask(ctx, taskID, patch)

	s.mu.Lock()
	// Relocate: the map may have shifted while the remote call ran.
	key, i, found = s.locate(taskID)
	if !found {
		s.mu.Unlock()
		return SyncRemote, ErrNotFound
	}
	s.tasks[key][i].Completed = completed
	s.tasks[key][i].CompletedAt = completedAt
	task = s.tasks[key][i]
	s.mu.Unlock()

	s.flushMirror(ctx)
	if remoteErr != nil {
		s.markDegraded("toggle-complete", remoteErr)
		return SyncLocalOnly, nil
	}
	if s.hooks != nil {
		if completed {
			s.hooks.OnTaskCompleted(taskID)
		} else {
			s.hooks.OnTaskUpdated(task)
		}
	}
	return SyncRemote, nil
}

// ClearCompleted bulk-deletes the completed tasks of one day partition.
// With nothing to clear no remote call is made. Partial remote failure
// still clears locally and reports SyncLocalOnly.
func (s *Store) ClearCompleted(ctx context.Context, day string, weekOffset int) (int, SyncStatus, error) {
	key := weekkey.Key(s.now(), day, weekOffset)

	s.mu.Lock()
	var ids []string
	for _, task := range s.tasks[key] {
		if task.Completed && task.ID != "" {
			ids = append(ids, task.ID)
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, SyncRemote, nil
	}

	status := SyncRemote
	if err := s.remote.BulkDeleteTasks(ctx, ids); err != nil {
		s.markDegraded("clear-completed", err)
		status = SyncLocalOnly
	}

	s.mu.Lock()
	kept := s.tasks[key][:0]
	cleared := 0
	for _, task := range s.tasks[key] {
		if task.Completed {
			cleared++
			continue
		}
		kept = append(kept, task)
	}
	s.tasks[key] = kept
	s.mu.Unlock()

	s.flushMirror(ctx)
	if s.hooks != nil {
		for _, id := range ids {
			s.hooks.OnTaskDeleted(id)
		}
	}
	return cleared, status, nil
}

// DeleteAllForDay bulk-deletes every task of one day partition.
func (s *Store) DeleteAllForDay(ctx context.Context, day string, weekOffset int) (int, SyncStatus, error) {
	key := weekkey.Key(s.now(), day, weekOffset)

	s.mu.Lock()
	var ids []string
	for _, task := range s.tasks[key] {
		if task.ID != "" {
			ids = append(ids, task.ID)
		}
	}
	total := len(s.tasks[key])
	s.mu.Unlock()

	if total == 0 {
		return 0, SyncRemote, nil
	}

	status := SyncRemote
	if len(ids) > 0 {
		if err := s.remote.BulkDeleteTasks(ctx, ids); err != nil {
			s.markDegraded("delete-all", err)
			status = SyncLocalOnly
		}
	}

	s.mu.Lock()
	deleted := len(s.tasks[key])
	delete(s.tasks, key)
	s.mu.Unlock()

	s.flushMirror(ctx)
	if s.hooks != nil {
		for _, id := range ids {
			s.hooks.OnTaskDeleted(id)
		}
	}
	return deleted, status, nil
}

// DeleteOldTasks drops every partition whose week lies beyond the
// configured retention window. Local-only housekeeping: no remote call.
// Runs only when auto-cleanup is enabled. Returns the number of tasks
// dropped.
func (s *Store) DeleteOldTasks(ctx context.Context) int {
	settings := s.Settings()
	if !settings.AutoCleanup {
		return 0
	}
	cutoff := s.now().AddDate(0, 0, -7*settings.CleanupWeeks)

	s.mu.Lock()
	dropped := 0
	for key, tasks := range s.tasks {
		date, _, err := weekkey.Parse(key)
		if err != nil {
			// Malformed keys are skipped, never fatal.
			s.log.Warnw("skipping unparseable week key", "key", key)
			continue
		}
		if date.Before(cutoff) {
			dropped += len(tasks)
			delete(s.tasks, key)
		}
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.flushMirror(ctx)
		s.log.Infow("retention sweep dropped old tasks", "count", dropped)
	}
	return dropped
}

// LoadFromRemote replaces the in-memory mapping with the remote task list,
// projecting each task into its week partition. Skips malformed entries
// per-task. Used at startup and by the periodic resync.
func (s *Store) LoadFromRemote(ctx context.Context) error {
	remoteTasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	now := s.now()
	rebuilt := make(map[string][]model.Task)
	for _, task := range remoteTasks {
		if model.WeekdayIndex(task.Day) < 0 {
			s.log.Warnw("skipping remote task with unknown day", "task", task.ID, "day", task.Day)
			continue
		}
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if task.Priority == "" {
			task.Priority = model.PriorityMedium
		}

		key := weekkey.Key(now, task.Day, task.WeekOffset)
		if task.AbsoluteDate != "" {
			// Absolute-dated tasks (generated class sessions) stay pinned to
			// their original calendar week.
			if date, perr := time.ParseInLocation("2006-01-02", task.AbsoluteDate, now.Location()); perr == nil {
				key = weekkey.KeyForDate(date, task.Day)
			} else {
				s.log.Warnw("ignoring malformed absolute date", "task", task.ID, "date", task.AbsoluteDate)
			}
		}
		rebuilt[key] = append(rebuilt[key], task)
	}

	s.mu.Lock()
	s.tasks = rebuilt
	s.degraded = false
	s.mu.Unlock()

	s.flushMirror(ctx)
	// Tasks created remotely between resyncs need reminders armed too.
	if s.hooks != nil {
		s.hooks.OnTasksReloaded(s.AllTasks())
	}
	return nil
}

// TasksFor returns a copy of one day partition.
func (s *Store) TasksFor(day string, weekOffset int) []model.Task {
	key := weekkey.Key(s.now(), day, weekOffset)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks[key]))
	copy(out, s.tasks[key])
	return out
}

// AllTasks returns a copy of every task across partitions.
func (s *Store) AllTasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, tasks := range s.tasks {
		out = append(out, tasks...)
	}
	return out
}

// Snapshot returns a deep copy of the partition mapping.
func (s *Store) Snapshot() map[string][]model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]model.Task, len(s.tasks))
	for key, tasks := range s.tasks {
		copied := make([]model.Task, len(tasks))
		copy(copied, tasks)
		out[key] = copied
	}
	return out
}

// HasTask reports whether a task with the same trimmed, case-folded title
// and legacy time exists in the given day partition.
func (s *Store) HasTask(day string, weekOffset int, title, timeStr string) bool {
	key := weekkey.Key(s.now(), day, weekOffset)
	want := strings.ToLower(strings.TrimSpace(title))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks[key] {
		if strings.ToLower(strings.TrimSpace(task.Title)) == want && task.Time == timeStr {
			return true
		}
	}
	return false
}
