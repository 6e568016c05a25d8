package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// SettingsRepository stores the single settings row.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// LoadOrInit creates the settings row with the given access-code hash when
// none exists yet.
func (r *SettingsRepository) LoadOrInit(ctx context.Context, accessCodeHash string) error {
	var settings model.Settings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load settings: %w", err)
	}
	settings = model.Settings{AccessCodeHash: accessCodeHash}
	if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return fmt.Errorf("init settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := r.db.WithContext(ctx).First(&settings).Error; err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
