package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingDeclined  BookingStatus = "DECLINED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingPending,
		BookingConfirmed,
		BookingDeclined,
		BookingCancelled,
		BookingCompleted,
	}
}

// bookingTransitions is the status state machine. COMPLETED and DECLINED
// are terminal; CANCELLED is terminal too.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingDeclined, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentState string

const (
	PaymentStatePending       PaymentState = "PENDING"
	PaymentStateInitiated     PaymentState = "INITIATED"
	PaymentStateSucceeded     PaymentState = "SUCCEEDED"
	PaymentStateFailed        PaymentState = "FAILED"
	PaymentStateRefunded      PaymentState = "REFUNDED"
	PaymentStateRefundPending PaymentState = "REFUND_PENDING"
)

// SlotRef denormalizes the booked slot's date and start time onto the
// booking so cancellation can reconcile availability without re-reading
// the (possibly already swept) Availability document. Written once at
// creation; never mutated afterwards.
type SlotRef struct {
	Date      time.Time `json:"date" bson:"date"`
	StartTime string    `json:"startTime" bson:"start_time"`
}

type Booking struct {
	ID                 string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TourID             string        `json:"tourId" bson:"tour_id" validate:"required,mongodb"`
	TouristID          string        `json:"touristId" bson:"tourist_id" validate:"required,mongodb"`
	GuideID            string        `json:"guideId" bson:"guide_id" validate:"required,mongodb"`
	AvailabilityID     string        `json:"availabilityId" bson:"availability_id" validate:"required,mongodb"`
	PaymentID          string        `json:"paymentId,omitempty" bson:"payment_id,omitempty"`
	StartAt            time.Time     `json:"startAt" bson:"start_at"`
	EndAt              time.Time     `json:"endAt,omitempty" bson:"end_at,omitempty"`
	NumGuests          int           `json:"numGuests" bson:"num_guests" validate:"required,min=1,max=100"`
	AmountTotal        float64       `json:"amountTotal" bson:"amount_total"`
	Currency           string        `json:"currency" bson:"currency"`
	Status             BookingStatus `json:"status" bson:"status"`
	PaymentStatus      PaymentState  `json:"paymentStatus" bson:"payment_status"`
	SlotRef            SlotRef       `json:"slotRef" bson:"slot_ref"`
	SpecialRequests    string        `json:"specialRequests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=1000"`
	CancellationReason string        `json:"cancellationReason,omitempty" bson:"cancellation_reason,omitempty"`
	RefundReason       string        `json:"refundReason,omitempty" bson:"refund_reason,omitempty"`
	CancelledBy        string        `json:"cancelledBy,omitempty" bson:"cancelled_by,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmedAt,omitempty" bson:"confirmed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	CreatedAt          time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time     `json:"updatedAt" bson:"updated_at"`
}

// BookingCreate is the tourist-facing creation payload. Guide, amount and
// slot reference are derived server-side.
type BookingCreate struct {
	TourID          string `json:"tourId" validate:"required,mongodb"`
	AvailabilityID  string `json:"availabilityId" validate:"required,mongodb"`
	NumGuests       int    `json:"numGuests" validate:"required,min=1,max=100"`
	SpecialRequests string `json:"specialRequests,omitempty" validate:"omitempty,max=1000"`
}

// StatusCount is a per-status tally used in list metadata.
type StatusCount struct {
	Status BookingStatus `json:"status" bson:"_id"`
	Count  int64         `json:"count" bson:"count"`
}
