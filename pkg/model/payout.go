package model

import "time"

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutSent       PayoutStatus = "SENT"
	PayoutFailed     PayoutStatus = "FAILED"
	PayoutCancelled  PayoutStatus = "CANCELLED"
)

func AllPayoutStatuses() []PayoutStatus {
	return []PayoutStatus{PayoutPending, PayoutProcessing, PayoutSent, PayoutFailed, PayoutCancelled}
}

// Payout is a guide withdrawal request. NetAmount = Amount - PlatformFee.
// On FAILED or CANCELLED the full requested Amount (fee included) goes
// back to the wallet.
type Payout struct {
	ID              string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GuideID         string         `json:"guideId" bson:"guide_id" validate:"required,mongodb"`
	Amount          float64        `json:"amount" bson:"amount" validate:"required,gt=0"`
	PlatformFee     float64        `json:"platformFee" bson:"platform_fee"`
	NetAmount       float64        `json:"netAmount" bson:"net_amount"`
	Currency        string         `json:"currency" bson:"currency"`
	Status          PayoutStatus   `json:"status" bson:"status"`
	PaymentMethod   string         `json:"paymentMethod,omitempty" bson:"payment_method,omitempty" validate:"omitempty,max=50"`
	AccountDetails  map[string]any `json:"accountDetails,omitempty" bson:"account_details,omitempty"`
	ProviderPayoutID string        `json:"providerPayoutId,omitempty" bson:"provider_payout_id,omitempty"`
	FailureReason   string         `json:"failureReason,omitempty" bson:"failure_reason,omitempty"`
	RequestedAt     time.Time      `json:"requestedAt" bson:"requested_at"`
	ProcessedAt     *time.Time     `json:"processedAt,omitempty" bson:"processed_at,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updated_at"`
}

// PayoutRequest is the guide-facing creation payload.
type PayoutRequest struct {
	Amount         float64        `json:"amount" validate:"required,gt=0"`
	PaymentMethod  string         `json:"paymentMethod" validate:"required,max=50"`
	AccountDetails map[string]any `json:"accountDetails,omitempty"`
}

// PayoutStatusStats is the per-status breakdown in admin list metadata.
type PayoutStatusStats struct {
	TotalAmount float64 `json:"totalAmount" bson:"totalAmount"`
	Count       int64   `json:"count" bson:"count"`
}
