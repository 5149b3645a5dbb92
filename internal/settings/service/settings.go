package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/settings/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/money"
)

// SettingsUpdate is a partial patch; absent sections keep their stored
// values.
type SettingsUpdate struct {
	PlatformFee *PlatformFeeUpdate `json:"platformFee,omitempty"`
	Payout      *PayoutUpdate      `json:"payout,omitempty"`
	Payment     *PaymentUpdate     `json:"payment,omitempty"`
	General     *GeneralUpdate     `json:"general,omitempty"`
}

type PlatformFeeUpdate struct {
	Enabled     *bool          `json:"enabled,omitempty"`
	Type        *model.FeeType `json:"type,omitempty" validate:"omitempty,oneof=PERCENTAGE FIXED"`
	Percentage  *float64       `json:"percentage,omitempty" validate:"omitempty,min=0,max=100"`
	FixedAmount *float64       `json:"fixedAmount,omitempty" validate:"omitempty,min=0"`
}

type PayoutUpdate struct {
	MinimumAmount  *float64 `json:"minimumAmount,omitempty" validate:"omitempty,min=0"`
	MaximumAmount  *float64 `json:"maximumAmount,omitempty" validate:"omitempty,min=0"`
	ProcessingDays *int     `json:"processingDays,omitempty" validate:"omitempty,min=0,max=30"`
}

type PaymentUpdate struct {
	Gateway  *string `json:"gateway,omitempty"`
	Currency *string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type GeneralUpdate struct {
	SiteName     *string `json:"siteName,omitempty"`
	SupportEmail *string `json:"supportEmail,omitempty" validate:"omitempty,email"`
	SupportPhone *string `json:"supportPhone,omitempty"`
	AboutText    *string `json:"aboutText,omitempty"`
}

type SettingsService interface {
	Get(ctx context.Context) (*model.PlatformSettings, error)
	Update(ctx context.Context, updates *SettingsUpdate) (*model.PlatformSettings, error)
	CalculateFee(ctx context.Context, amount float64) (float64, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewSettingsService(repo repository.SettingsRepository, cfg *config.Config) SettingsService {
	return &settingsService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *settingsService) Get(ctx context.Context) (*model.PlatformSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load platform settings", "error", err)
		return nil, apperrors.Internal("Failed to load platform settings", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, updates *SettingsUpdate) (*model.PlatformSettings, error) {
	if err := s.validate.Struct(updates); err != nil {
		return nil, apperrors.Validation("Settings validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	merge(settings, updates)

	if settings.Payout.MaximumAmount > 0 && settings.Payout.MinimumAmount > settings.Payout.MaximumAmount {
		return nil, apperrors.InvalidInput("Payout minimum cannot exceed maximum")
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		s.cfg.Log.Error("Failed to save platform settings", "error", err)
		return nil, apperrors.Internal("Failed to save platform settings", err)
	}

	s.cfg.Log.Info("Platform settings updated")
	return settings, nil
}

// CalculateFee applies the platform fee policy to an amount. Disabled fees
// cost nothing; results are rounded to cents.
func (s *settingsService) CalculateFee(ctx context.Context, amount float64) (float64, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}

	fee := settings.PlatformFee
	if !fee.Enabled {
		return 0, nil
	}

	switch fee.Type {
	case model.FeeFixed:
		charge := money.Round2(fee.FixedAmount)
		if charge > amount {
			charge = money.Round2(amount)
		}
		return charge, nil
	default:
		return money.PercentOf(amount, fee.Percentage), nil
	}
}

func merge(settings *model.PlatformSettings, updates *SettingsUpdate) {
	if u := updates.PlatformFee; u != nil {
		if u.Enabled != nil {
			settings.PlatformFee.Enabled = *u.Enabled
		}
		if u.Type != nil {
			settings.PlatformFee.Type = *u.Type
		}
		if u.Percentage != nil {
			settings.PlatformFee.Percentage = *u.Percentage
		}
		if u.FixedAmount != nil {
			settings.PlatformFee.FixedAmount = *u.FixedAmount
		}
	}
	if u := updates.Payout; u != nil {
		if u.MinimumAmount != nil {
			settings.Payout.MinimumAmount = *u.MinimumAmount
		}
		if u.MaximumAmount != nil {
			settings.Payout.MaximumAmount = *u.MaximumAmount
		}
		if u.ProcessingDays != nil {
			settings.Payout.ProcessingDays = *u.ProcessingDays
		}
	}
	if u := updates.Payment; u != nil {
		if u.Gateway != nil {
			settings.Payment.Gateway = *u.Gateway
		}
		if u.Currency != nil {
			settings.Payment.Currency = *u.Currency
		}
	}
	if u := updates.General; u != nil {
		if u.SiteName != nil {
			settings.General.SiteName = *u.SiteName
		}
		if u.SupportEmail != nil {
			settings.General.SupportEmail = *u.SupportEmail
		}
		if u.SupportPhone != nil {
			settings.General.SupportPhone = *u.SupportPhone
		}
		if u.AboutText != nil {
			settings.General.AboutText = *u.AboutText
		}
	}
}
