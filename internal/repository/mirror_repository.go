package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Mirror keys. They mirror the names the browser client used in
// localStorage so an exported mirror stays recognizable.
const (
	KeyTasks    = "dailyPlannerTasks"
	KeySettings = "dailyPlannerSettings"
	KeyTheme    = "dailyPlannerTheme"
	KeySchedule = "classScheduleData"
	KeyWeather  = "dailyPlannerWeather"
)

// MirrorEntry is one JSON-encoded value in the local mirror.
type MirrorEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// MirrorRepository persists JSON blobs keyed by name. It is a passive
// fallback target, never a source of truth once memory is loaded.
type MirrorRepository struct {
	db *gorm.DB
}

func NewMirrorRepository(db *gorm.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// Get returns the stored value, or ok=false when the key is absent.
func (r *MirrorRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry MirrorEntry
	err := r.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	switch {
	case err == nil:
		return entry.Value, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("read mirror %q: %w", key, err)
	}
}

// Set overwrites the stored value.
func (r *MirrorRepository) Set(ctx context.Context, key, value string) error {
	entry := MirrorEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return fmt.Errorf("write mirror %q: %w", key, err)
	}
	return nil
}

// Delete removes the key; deleting an absent key is not an error.
func (r *MirrorRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&MirrorEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete mirror %q: %w", key, err)
	}
	return nil
}
