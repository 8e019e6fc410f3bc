// Package schedule turns a semester class schedule into concrete task
// records, one per class session, pinned to their calendar dates.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"week-planner/internal/model"
	"week-planner/internal/repository"
	"week-planner/internal/store"
)

// RemoteSchedule is the remote class-schedule document store.
type RemoteSchedule interface {
	GetClassSchedule(ctx context.Context) (model.ClassScheduleData, error)
	PutClassSchedule(ctx context.Context, data model.ClassScheduleData) error
}

// TaskImporter accepts generated tasks in bulk.
type TaskImporter interface {
	ImportGenerated(ctx context.Context, tasks []model.Task) (int, store.SyncStatus)
	ClearGenerated(ctx context.Context) (int, store.SyncStatus)
}

// Generator owns the class schedule data and its expansion into tasks.
type Generator struct {
	remote RemoteSchedule
	mirror *repository.MirrorRepository
	tasks  TaskImporter
	log    *zap.SugaredLogger

	data model.ClassScheduleData
}

func New(remote RemoteSchedule, mirror *repository.MirrorRepository, tasks TaskImporter, log *zap.SugaredLogger) *Generator {
	return &Generator{remote: remote, mirror: mirror, tasks: tasks, log: log}
}

// Data returns the currently loaded schedule.
func (g *Generator) Data() model.ClassScheduleData { return g.data }

// Load fetches the schedule from the remote store, falling back to the
// local mirror when the remote is unreachable. Starting with an empty
// schedule is not an error.
func (g *Generator) Load(ctx context.Context) error {
	data, err := g.remote.GetClassSchedule(ctx)
	if err == nil {
		g.data = data
		return g.mirrorSchedule(ctx)
	}
	g.log.Warnw("remote class schedule unavailable, trying mirror", "err", err)

	raw, ok, merr := g.mirror.Get(ctx, repository.KeySchedule)
	if merr != nil {
		return fmt.Errorf("load class schedule: %w", merr)
	}
	if !ok {
		g.data = model.ClassScheduleData{}
		return nil
	}
	if uerr := json.Unmarshal([]byte(raw), &g.data); uerr != nil {
		g.log.Warnw("mirrored class schedule corrupt, starting empty", "err", uerr)
		g.data = model.ClassScheduleData{}
	}
	return nil
}

// Save stores the schedule remote-first, then mirrors it. Remote failure
// keeps the local copy and reports degraded sync.
func (g *Generator) Save(ctx context.Context, data model.ClassScheduleData) (store.SyncStatus, error) {
	g.data = data

	status := store.SyncRemote
	if err := g.remote.PutClassSchedule(ctx, data); err != nil {
		g.log.Warnw("remote class schedule save failed, keeping local copy", "err", err)
		status = store.SyncLocalOnly
	}
	if err := g.mirrorSchedule(ctx); err != nil {
		return status, err
	}
	return status, nil
}

func (g *Generator) mirrorSchedule(ctx context.Context) error {
	raw, err := json.Marshal(g.data)
	if err != nil {
		return fmt.Errorf("encode class schedule: %w", err)
	}
	return g.mirror.Set(ctx, repository.KeySchedule, string(raw))
}

// description builds the task body from the optional class metadata.
func description(class model.ClassDefinition) string {
	var b strings.Builder
	if class.Code != "" {
		b.WriteString(class.Code)
		b.WriteString(" - ")
	}
	if class.Professor != "" {
		b.WriteString("Prof. ")
		b.WriteString(class.Professor)
	}
	if class.Location != "" {
		b.WriteString(" @ ")
		b.WriteString(class.Location)
	}
	return b.String()
}

// Expand walks the semester day by day and emits one task per class
// session, skipping break periods. Pure: no store mutation, no remote
// calls. Returns an error when the semester range is unset or inverted.
func (g *Generator) Expand() ([]model.Task, error) {
	sem := g.data.Semester
	if sem.StartDate == "" || sem.EndDate == "" {
		return nil, fmt.Errorf("semester start and end dates must be set")
	}
	start, err := time.Parse("2006-01-02", sem.StartDate)
	if err != nil {
		return nil, fmt.Errorf("semester start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", sem.EndDate)
	if err != nil {
		return nil, fmt.Errorf("semester end date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("semester ends before it starts")
	}
	if len(g.data.Classes) == 0 {
		return nil, fmt.Errorf("no classes defined")
	}

	var out []model.Task
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dateStr := date.Format("2006-01-02")
		if g.inBreak(dateStr) {
			continue
		}
		dayName := date.Weekday().String()

		for _, class := range g.data.Classes {
			if !meetsOn(class, dayName) {
				continue
			}
			out = append(out, model.Task{
				ID:           uuid.NewString(),
				Title:        class.Name,
				Description:  description(class),
				Day:          dayName,
				Time:         class.StartTime,
				EndTime:      class.EndTime,
				Priority:     model.PriorityMedium,
				Color:        class.Color,
				IsClassTask:  true,
				ClassID:      class.ID,
				AbsoluteDate: dateStr,
			})
		}
	}
	return out, nil
}

func (g *Generator) inBreak(dateStr string) bool {
	for _, br := range g.data.Breaks {
		if br.Contains(dateStr) {
			return true
		}
	}
	return false
}

func meetsOn(class model.ClassDefinition, day string) bool {
	for _, d := range class.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Generate expands the loaded schedule and imports the sessions into the
// task store. Sessions already present (same class and date) are skipped
// by the import, so regeneration adds only what is missing.
func (g *Generator) Generate(ctx context.Context) (int, store.SyncStatus, error) {
	sessions, err := g.Expand()
	if err != nil {
		return 0, store.SyncRemote, err
	}
	added, status := g.tasks.ImportGenerated(ctx, sessions)
	g.log.Infow("generated class sessions", "count", added, "sync", status.String())
	return added, status, nil
}

// Clear removes every generated class task, leaving manual tasks alone.
func (g *Generator) Clear(ctx context.Context) (int, store.SyncStatus) {
	removed, status := g.tasks.ClearGenerated(ctx)
	g.log.Infow("cleared generated class sessions", "count", removed, "sync", status.String())
	return removed, status
}
