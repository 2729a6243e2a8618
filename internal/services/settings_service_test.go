package services

import (
	"context"
	"testing"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsServiceDefaults(t *testing.T) {
	svc, err := LoadSettingsService(context.Background(), repositories.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), svc.Current())
}

func TestLoadSettingsServiceMergesStored(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	require.NoError(t, store.SaveSettings(ctx, models.Settings{TotalSpaces: 12, CarHourlyRate: 3000}))

	svc, err := LoadSettingsService(ctx, store)
	require.NoError(t, err)
	got := svc.Current()
	assert.Equal(t, 12, got.TotalSpaces)
	assert.Equal(t, int64(3000), got.CarHourlyRate)
	assert.Equal(t, models.DefaultSettings().MotoDayRate, got.MotoDayRate)
}

func TestSettingsSaveValidatesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc, err := LoadSettingsService(ctx, store)
	require.NoError(t, err)

	_, err = svc.Save(ctx, "req-1", models.Settings{CarHourlyRate: -5})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, models.DefaultSettings(), svc.Current())

	saved, err := svc.Save(ctx, "req-2", models.Settings{WarningMinutes: 15, MotoHourlyRate: 2000})
	require.NoError(t, err)
	assert.Equal(t, 15, saved.WarningMinutes)
	assert.Equal(t, saved, svc.Current())

	stored, ok, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2000), stored.MotoHourlyRate)

	rate, _ := svc.Current().Rates().Rate(domain.VehicleMotorcycle, domain.RateHourly)
	assert.Equal(t, int64(2000), rate)
}
