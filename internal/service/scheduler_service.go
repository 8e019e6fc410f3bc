// Package service hosts the background jobs that keep the planner
// converged: periodic mirror flushes, remote resyncs, and the retention
// sweep.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"week-planner/internal/config"
)

// SchedulerService wraps cron-based repeating jobs. Jobs run with no
// mutual exclusion between each other; each one takes the store lock on
// its own.
type SchedulerService struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

func NewSchedulerService(loc *time.Location, log *zap.SugaredLogger) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		log:  log,
	}
}

// PlannerJobs is what the background loop drives on the task store.
type PlannerJobs interface {
	Flush(ctx context.Context)
	LoadFromRemote(ctx context.Context) error
	DeleteOldTasks(ctx context.Context) int
}

// RegisterPlannerJobs wires the three standing jobs from config: the
// mirror flush, the remote resync, and the hourly retention sweep.
func (s *SchedulerService) RegisterPlannerJobs(ctx context.Context, cfg config.Config, jobs PlannerJobs) error {
	if _, err := s.ScheduleInterval(cfg.FlushInterval, func() {
		jobs.Flush(ctx)
	}); err != nil {
		return fmt.Errorf("schedule mirror flush: %w", err)
	}

	if _, err := s.ScheduleInterval(cfg.ResyncInterval, func() {
		if err := jobs.LoadFromRemote(ctx); err != nil {
			s.log.Warnw("periodic resync failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule resync: %w", err)
	}

	if _, err := s.ScheduleInterval(cfg.SweepInterval, func() {
		jobs.DeleteOldTasks(ctx)
	}); err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}
	return nil
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
