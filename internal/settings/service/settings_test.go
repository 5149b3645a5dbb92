package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type mockSettingsRepository struct {
	stored *model.PlatformSettings
}

func (m *mockSettingsRepository) Get(ctx context.Context) (*model.PlatformSettings, error) {
	if m.stored == nil {
		m.stored = model.DefaultPlatformSettings()
	}
	return m.stored, nil
}

func (m *mockSettingsRepository) Save(ctx context.Context, settings *model.PlatformSettings) error {
	m.stored = settings
	return nil
}

func newTestService(repo *mockSettingsRepository) SettingsService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewSettingsService(repo, &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
}

func TestCalculateFee_Percentage(t *testing.T) {
	svc := newTestService(&mockSettingsRepository{})
	ctx := context.Background()

	// Defaults are 15% percentage fee.
	fee, err := svc.CalculateFee(ctx, 150)
	require.NoError(t, err)
	assert.Equal(t, 22.5, fee)

	fee, err = svc.CalculateFee(ctx, 99.99)
	require.NoError(t, err)
	assert.Equal(t, 15.0, fee, "15%% of 99.99 is 14.9985, rounds to 15.00")
}

func TestCalculateFee_Fixed(t *testing.T) {
	repo := &mockSettingsRepository{stored: model.DefaultPlatformSettings()}
	repo.stored.PlatformFee.Type = model.FeeFixed
	repo.stored.PlatformFee.FixedAmount = 25

	svc := newTestService(repo)
	ctx := context.Background()

	fee, err := svc.CalculateFee(ctx, 150)
	require.NoError(t, err)
	assert.Equal(t, 25.0, fee)

	// A fixed fee never exceeds the amount itself.
	fee, err = svc.CalculateFee(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, fee)
}

func TestCalculateFee_Disabled(t *testing.T) {
	repo := &mockSettingsRepository{stored: model.DefaultPlatformSettings()}
	repo.stored.PlatformFee.Enabled = false

	svc := newTestService(repo)

	fee, err := svc.CalculateFee(context.Background(), 150)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fee)
}

func TestUpdate_PartialMerge(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc := newTestService(repo)
	ctx := context.Background()

	pct := 10.0
	updated, err := svc.Update(ctx, &SettingsUpdate{
		PlatformFee: &PlatformFeeUpdate{Percentage: &pct},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, updated.PlatformFee.Percentage)
	// Untouched sections keep their defaults.
	assert.True(t, updated.PlatformFee.Enabled)
	assert.Equal(t, 100.0, updated.Payout.MinimumAmount)
	assert.Equal(t, "sslcommerz", updated.Payment.Gateway)
}

func TestUpdate_RejectsInvertedPayoutBounds(t *testing.T) {
	svc := newTestService(&mockSettingsRepository{})

	minAmount := 5000.0
	maxAmount := 1000.0
	_, err := svc.Update(context.Background(), &SettingsUpdate{
		Payout: &PayoutUpdate{MinimumAmount: &minAmount, MaximumAmount: &maxAmount},
	})
	assert.Error(t, err)
}
