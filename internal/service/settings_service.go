package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

var ErrWrongAccessCode = errors.New("wrong access code")

// SettingsService guards the single-row settings record and the access
// code, stored bcrypt-hashed.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
}

func NewSettingsService(settingsRepo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// Bootstrap creates the settings row with the default access code on first
// run.
func (s *SettingsService) Bootstrap(ctx context.Context, defaultAccessCode string) error {
	hash, err := hashAccessCode(defaultAccessCode)
	if err != nil {
		return err
	}
	return s.settingsRepo.LoadOrInit(ctx, hash)
}

func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// VerifyAccessCode checks a login attempt against the stored hash.
func (s *SettingsService) VerifyAccessCode(ctx context.Context, code string) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(settings.AccessCodeHash), []byte(code)) != nil {
		return ErrWrongAccessCode
	}
	return nil
}

// ChangeAccessCode replaces the access code after verifying the current one.
func (s *SettingsService) ChangeAccessCode(ctx context.Context, current, next string) error {
	if len(next) < 4 {
		return fmt.Errorf("access code must be at least 4 characters")
	}
	if err := s.VerifyAccessCode(ctx, current); err != nil {
		return err
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	hash, err := hashAccessCode(next)
	if err != nil {
		return err
	}
	settings.AccessCodeHash = hash
	return s.settingsRepo.Save(ctx, settings)
}

// SetHourlyReport flips the hourly report toggle.
func (s *SettingsService) SetHourlyReport(ctx context.Context, enabled bool) (*model.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.HourlyReport = enabled
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func hashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash access code: %w", err)
	}
	return string(hash), nil
}
