package store

import (
	"context"
	"time"

	"week-planner/internal/model"
	"week-planner/internal/weekkey"
)

// ImportGenerated inserts schedule-generated class tasks, each pinned to
// the calendar week of its absolute date. A session already present
// (same classId and date) is skipped, so regeneration is idempotent.
// Remote writes are tolerant: failures downgrade to local-only.
func (s *Store) ImportGenerated(ctx context.Context, tasks []model.Task) (int, SyncStatus) {
	var added []model.Task

	s.mu.Lock()
	for _, task := range tasks {
		date, err := time.Parse("2006-01-02", task.AbsoluteDate)
		if err != nil {
			s.log.Warnw("skipping generated task without valid date", "task", task.Title, "date", task.AbsoluteDate)
			continue
		}
		key := weekkey.KeyForDate(date, task.Day)

		duplicate := false
		for _, existing := range s.tasks[key] {
			if existing.IsClassTask && existing.ClassID == task.ClassID && existing.AbsoluteDate == task.AbsoluteDate {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		s.tasks[key] = append(s.tasks[key], task)
		added = append(added, task)
	}
	s.mu.Unlock()

	status := SyncRemote
	for _, task := range added {
		if _, err := s.remote.CreateTask(ctx, task); err != nil {
			s.markDegraded("import-generated", err)
			status = SyncLocalOnly
			break
		}
	}

	if len(added) > 0 {
		s.flushMirror(ctx)
	}
	return len(added), status
}

// ClearGenerated removes every generated class task: one remote bulk
// delete, then a local strip. Remote failure still clears locally.
func (s *Store) ClearGenerated(ctx context.Context) (int, SyncStatus) {
	s.mu.Lock()
	var ids []string
	for _, tasks := range s.tasks {
		for _, task := range tasks {
			if task.IsClassTask && task.ID != "" {
				ids = append(ids, task.ID)
			}
		}
	}
	s.mu.Unlock()

	status := SyncRemote
	if len(ids) > 0 {
		if err := s.remote.BulkDeleteTasks(ctx, ids); err != nil {
			s.markDegraded("clear-generated", err)
			status = SyncLocalOnly
		}
	}

	s.mu.Lock()
	removed := 0
	for key, tasks := range s.tasks {
		kept := tasks[:0]
		for _, task := range tasks {
			if task.IsClassTask {
				removed++
				continue
			}
			kept = append(kept, task)
		}
		s.tasks[key] = kept
	}
	s.mu.Unlock()

	if removed > 0 {
		s.flushMirror(ctx)
		if s.hooks != nil {
			for _, id := range ids {
				s.hooks.OnTaskDeleted(id)
			}
		}
	}
	return removed, status
}
