package model

import "time"

// Wallet is the per-guide running ledger. One document per guide (unique
// index on guide_id). All mutations go through atomic conditional updates
// in the wallet repository; services never do read-modify-write on these
// fields.
//
// Balance semantics:
//   - Balance: withdrawable.
//   - PayableBalance: earned on completed tours, released for withdrawal.
//   - PendingBalance: moved out of Balance by a payout request, awaiting
//     admin processing.
type Wallet struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty"`
	GuideID          string    `json:"guideId" bson:"guide_id" validate:"required,mongodb"`
	Balance          float64   `json:"balance" bson:"balance"`
	PayableBalance   float64   `json:"payableBalance" bson:"payable_balance"`
	PendingBalance   float64   `json:"pendingBalance" bson:"pending_balance"`
	TotalEarned      float64   `json:"totalEarned" bson:"total_earned"`
	TotalPlatformFee float64   `json:"totalPlatformFee" bson:"total_platform_fee"`
	TotalReceived    float64   `json:"totalReceived" bson:"total_received"`
	PaymentIDs       []string  `json:"transactions" bson:"payment_ids"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updated_at"`
}
