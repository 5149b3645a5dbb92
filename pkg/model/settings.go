package model

import "time"

type FeeType string

const (
	FeePercentage FeeType = "PERCENTAGE"
	FeeFixed      FeeType = "FIXED"
)

type PlatformFeeSettings struct {
	Enabled     bool    `json:"enabled" bson:"enabled"`
	Type        FeeType `json:"type" bson:"type" validate:"omitempty,oneof=PERCENTAGE FIXED"`
	Percentage  float64 `json:"percentage" bson:"percentage" validate:"omitempty,min=0,max=100"`
	FixedAmount float64 `json:"fixedAmount" bson:"fixed_amount" validate:"omitempty,min=0"`
}

type PayoutSettings struct {
	MinimumAmount  float64 `json:"minimumAmount" bson:"minimum_amount" validate:"omitempty,min=0"`
	MaximumAmount  float64 `json:"maximumAmount" bson:"maximum_amount" validate:"omitempty,min=0"`
	ProcessingDays int     `json:"processingDays" bson:"processing_days" validate:"omitempty,min=0,max=30"`
}

type PaymentSettings struct {
	Gateway  string `json:"gateway" bson:"gateway"`
	Currency string `json:"currency" bson:"currency"`
}

type GeneralSettings struct {
	SiteName     string `json:"siteName" bson:"site_name"`
	SupportEmail string `json:"supportEmail" bson:"support_email" validate:"omitempty,email"`
	SupportPhone string `json:"supportPhone" bson:"support_phone"`
	AboutText    string `json:"aboutText" bson:"about_text"`
}

// PlatformSettings is a singleton document; the repository always reads
// and writes the same _id.
type PlatformSettings struct {
	ID          string              `json:"id,omitempty" bson:"_id,omitempty"`
	PlatformFee PlatformFeeSettings `json:"platformFee" bson:"platform_fee"`
	Payout      PayoutSettings      `json:"payout" bson:"payout"`
	Payment     PaymentSettings     `json:"payment" bson:"payment"`
	General     GeneralSettings     `json:"general" bson:"general"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updated_at"`
}

// DefaultPlatformSettings mirrors the values seeded when no settings
// document exists yet.
func DefaultPlatformSettings() *PlatformSettings {
	return &PlatformSettings{
		PlatformFee: PlatformFeeSettings{
			Enabled:    true,
			Type:       FeePercentage,
			Percentage: 15,
		},
		Payout: PayoutSettings{
			MinimumAmount:  100,
			MaximumAmount:  100000,
			ProcessingDays: 7,
		},
		Payment: PaymentSettings{
			Gateway:  "sslcommerz",
			Currency: "BDT",
		},
		General: GeneralSettings{
			SiteName: "Local Guide",
		},
	}
}
