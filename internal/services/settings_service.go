package services

import (
	"context"
	"fmt"
	"sync"

	"parking/internal/domain/models"
	"parking/internal/repositories"
	"parking/internal/utils"
)

// SettingsProvider exposes the live configuration to other services.
type SettingsProvider interface {
	Current() models.Settings
}

// SettingsService keeps the rate table and thresholds in memory and writes
// every accepted edit through to the store.
type SettingsService struct {
	Store repositories.SettingsStore

	mu      sync.RWMutex
	current models.Settings
}

// LoadSettingsService reads stored settings at startup and merges them over
// the defaults.
func LoadSettingsService(ctx context.Context, store repositories.SettingsStore) (*SettingsService, error) {
	s := &SettingsService{Store: store, current: models.DefaultSettings()}
	stored, ok, err := store.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if ok {
		s.current = stored.MergeOver(models.DefaultSettings())
	}
	return s, nil
}

func (s *SettingsService) Current() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates and persists a full settings document. Omitted (zero) fields
// keep their current value.
func (s *SettingsService) Save(ctx context.Context, requestID string, in models.Settings) (models.Settings, error) {
	next := in.MergeOver(s.Current())
	if err := next.Validate(); err != nil {
		return models.Settings{}, err
	}
	if err := s.Store.SaveSettings(ctx, next); err != nil {
		return models.Settings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	utils.LogEventf(requestID, "settings", "save", "total_spaces=%d warning_minutes=%d", next.TotalSpaces, next.WarningMinutes)
	return next, nil
}
