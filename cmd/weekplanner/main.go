package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"week-planner/internal/config"
	"week-planner/internal/logging"
	"week-planner/internal/notify"
	"week-planner/internal/reminder"
	"week-planner/internal/remote"
	"week-planner/internal/repository"
	"week-planner/internal/schedule"
	"week-planner/internal/service"
	"week-planner/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogPath)
	defer logger.Sync()

	db, err := repository.NewDB(cfg.MirrorPath)
	if err != nil {
		logger.Fatalw("open mirror database", "err", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	mirror := repository.NewMirrorRepository(db)

	client := remote.NewClient(cfg.RemoteBaseURL, logger)

	var notifier notify.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Fatalw("telegram notifier", "err", err)
		}
		notifier = tg
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	taskStore := store.New(client, mirror, logger)
	taskStore.LoadSettings(ctx)

	reminders := reminder.New(notifier, taskStore.Settings, func(now time.Time) (string, string) {
		day := now.Weekday().String()
		return reminder.BuildSummary(day, taskStore.TasksFor(day, 0), taskStore.CachedForecast(ctx))
	}, logger)
	taskStore.SetHooks(reminders)

	// Hydration arms reminders through the reload hook, as does every
	// later resync.
	if err := taskStore.LoadFromRemote(ctx); err != nil {
		logger.Warnw("remote store unreachable at startup, loading mirror", "err", err)
		if err := taskStore.LoadFromMirror(ctx); err != nil {
			logger.Fatalw("load mirror", "err", err)
		}
	}

	generator := schedule.New(client, mirror, taskStore, logger)
	if err := generator.Load(ctx); err != nil {
		logger.Warnw("load class schedule", "err", err)
	}

	if taskStore.Settings().NotificationsEnabled {
		reminders.ScheduleDailySummary()
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	if err := scheduler.RegisterPlannerJobs(ctx, cfg, taskStore); err != nil {
		logger.Fatalw("register background jobs", "err", err)
	}
	// Week rollover: timers only cover the next seven days, so re-arm
	// from local state shortly after midnight even when the remote is
	// unreachable and the resync cannot do it.
	if _, err := scheduler.ScheduleDaily("00:05", func() {
		reminders.OnTasksReloaded(taskStore.AllTasks())
	}); err != nil {
		logger.Fatalw("schedule midnight re-arm", "err", err)
	}
	scheduler.Start()

	logger.Infow("week planner started",
		"remote", cfg.RemoteBaseURL,
		"mirror", cfg.MirrorPath,
		"degraded", taskStore.Degraded(),
	)

	<-ctx.Done()

	scheduler.Stop()
	reminders.Teardown()

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	taskStore.Flush(flushCtx)

	logger.Infow("shutdown complete")
}
