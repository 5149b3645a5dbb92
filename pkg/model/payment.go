package model

import "time"

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentInitiated     PaymentStatus = "INITIATED"
	PaymentPaid          PaymentStatus = "PAID"
	PaymentFailed        PaymentStatus = "FAILED"
	PaymentCancelled     PaymentStatus = "CANCELLED"
	PaymentRefunded      PaymentStatus = "REFUNDED"
	PaymentRefundPending PaymentStatus = "REFUND_PENDING"
)

// Payment records one gateway attempt for a booking. TransactionID is
// unique and reissued on every retry.
type Payment struct {
	ID            string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID     string         `json:"bookingId" bson:"booking_id" validate:"required,mongodb"`
	CustomerID    string         `json:"customerId" bson:"customer_id" validate:"required,mongodb"`
	TransactionID string         `json:"transactionId" bson:"transaction_id" validate:"required"`
	Amount        float64        `json:"amount" bson:"amount" validate:"required,gt=0"`
	Currency      string         `json:"currency" bson:"currency"`
	Provider      string         `json:"provider" bson:"provider"`
	Status        PaymentStatus  `json:"status" bson:"status"`
	GatewayData   map[string]any `json:"paymentGatewayData,omitempty" bson:"payment_gateway_data,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	RefundReason  string         `json:"refundReason,omitempty" bson:"refund_reason,omitempty"`
	RefundedAt    *time.Time     `json:"refundedAt,omitempty" bson:"refunded_at,omitempty"`
	InvoiceURL    string         `json:"invoiceUrl,omitempty" bson:"invoice_url,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updated_at"`
}
