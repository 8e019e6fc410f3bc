package store

import (
	"context"
	"encoding/json"

	"week-planner/internal/model"
	"week-planner/internal/repository"
)

// Settings returns a copy of the current user settings.
func (s *Store) Settings() model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.settings
	settings.ReminderLeadTimes = append([]int(nil), s.settings.ReminderLeadTimes...)
	return settings
}

// LoadSettings hydrates settings remote-first, falling back to the mirror
// and then to defaults.
func (s *Store) LoadSettings(ctx context.Context) {
	settings, err := s.remote.GetSettings(ctx)
	if err != nil {
		s.log.Warnw("settings unavailable remotely, using mirror", "err", err)
		settings = model.DefaultSettings()
		if raw, ok, merr := s.mirror.Get(ctx, repository.KeySettings); merr == nil && ok {
			if uerr := json.Unmarshal([]byte(raw), &settings); uerr != nil {
				s.log.Warnw("mirrored settings corrupt, using defaults", "err", uerr)
				settings = model.DefaultSettings()
			}
		}
	}

	settings.Normalize()
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.flushMirror(ctx)
}

// UpdateSettings persists new settings remote-then-mirror. Remote failure
// keeps the change locally and reports SyncLocalOnly.
func (s *Store) UpdateSettings(ctx context.Context, settings model.UserSettings) (SyncStatus, error) {
	settings.Normalize()

	status := SyncRemote
	if err := s.remote.PutSettings(ctx, settings); err != nil {
		s.markDegraded("put-settings", err)
		status = SyncLocalOnly
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.flushMirror(ctx)
	return status, nil
}
