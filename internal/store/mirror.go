package store

import (
	"context"
	"encoding/json"

	"week-planner/internal/model"
	"week-planner/internal/repository"
)

// flushMirror writes the task mapping and settings to the local mirror.
// Best effort: a failed flush is logged and the in-memory state stays
// authoritative.
func (s *Store) flushMirror(ctx context.Context) {
	s.mu.Lock()
	rawTasks, err := json.Marshal(s.tasks)
	rawSettings, serr := json.Marshal(s.settings)
	s.mu.Unlock()

	if err != nil || serr != nil {
		s.log.Errorw("mirror encode failed", "tasksErr", err, "settingsErr", serr)
		return
	}
	if err := s.mirror.Set(ctx, repository.KeyTasks, string(rawTasks)); err != nil {
		s.log.Warnw("mirror flush failed", "err", err)
		return
	}
	if err := s.mirror.Set(ctx, repository.KeySettings, string(rawSettings)); err != nil {
		s.log.Warnw("mirror flush failed", "err", err)
	}
}

// Flush exposes the mirror write for the periodic background job and
// shutdown.
func (s *Store) Flush(ctx context.Context) {
	s.flushMirror(ctx)
}

// LoadFromMirror hydrates the store from the local mirror, used when the
// remote store is unreachable at startup. Corrupt partitions are skipped
// individually; a corrupt settings blob falls back to defaults.
func (s *Store) LoadFromMirror(ctx context.Context) error {
	raw, ok, err := s.mirror.Get(ctx, repository.KeyTasks)
	if err != nil {
		return err
	}
	if ok {
		var partitions map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &partitions); err != nil {
			s.log.Warnw("mirrored task mapping corrupt, starting empty", "err", err)
		} else {
			loaded := make(map[string][]model.Task, len(partitions))
			for key, rawTasks := range partitions {
				var tasks []model.Task
				if err := json.Unmarshal(rawTasks, &tasks); err != nil {
					s.log.Warnw("skipping corrupt mirror partition", "key", key, "err", err)
					continue
				}
				loaded[key] = tasks
			}
			s.mu.Lock()
			s.tasks = loaded
			s.mu.Unlock()
			if s.hooks != nil {
				s.hooks.OnTasksReloaded(s.AllTasks())
			}
		}
	}

	rawSettings, ok, err := s.mirror.Get(ctx, repository.KeySettings)
	if err != nil {
		return err
	}
	if ok {
		settings := model.DefaultSettings()
		if err := json.Unmarshal([]byte(rawSettings), &settings); err != nil {
			s.log.Warnw("mirrored settings corrupt, using defaults", "err", err)
			settings = model.DefaultSettings()
		}
		settings.Normalize()
		s.mu.Lock()
		s.settings = settings
		s.mu.Unlock()
	}
	return nil
}

// Theme returns the persisted display theme, empty when none was saved.
// Stored as a bare string, not JSON.
func (s *Store) Theme(ctx context.Context) string {
	theme, ok, err := s.mirror.Get(ctx, repository.KeyTheme)
	if err != nil || !ok {
		return ""
	}
	return theme
}

// SetTheme persists the display theme. Purely local; the remote store
// does not know about themes.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	return s.mirror.Set(ctx, repository.KeyTheme, theme)
}

// CachedForecast returns the mirrored forecast record, if any.
func (s *Store) CachedForecast(ctx context.Context) *model.Forecast {
	raw, ok, err := s.mirror.Get(ctx, repository.KeyWeather)
	if err != nil || !ok {
		return nil
	}
	var forecast model.Forecast
	if err := json.Unmarshal([]byte(raw), &forecast); err != nil {
		s.log.Warnw("mirrored forecast corrupt", "err", err)
		return nil
	}
	return &forecast
}

// CacheForecast mirrors a forecast record for later display.
func (s *Store) CacheForecast(ctx context.Context, forecast model.Forecast) error {
	raw, err := json.Marshal(forecast)
	if err != nil {
		return err
	}
	return s.mirror.Set(ctx, repository.KeyWeather, string(raw))
}
