package model

import "time"

type NotificationType string

const (
	NotifyBookingCreated   NotificationType = "BOOKING_CREATED"
	NotifyBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotifyBookingDeclined  NotificationType = "BOOKING_DECLINED"
	NotifyBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotifyBookingCompleted NotificationType = "BOOKING_COMPLETED"

	NotifyPaymentSuccess  NotificationType = "PAYMENT_SUCCESS"
	NotifyPaymentFailed   NotificationType = "PAYMENT_FAILED"
	NotifyPaymentRefunded NotificationType = "PAYMENT_REFUNDED"

	NotifyReviewReceivedTour  NotificationType = "REVIEW_RECEIVED_TOUR"
	NotifyReviewReceivedGuide NotificationType = "REVIEW_RECEIVED_GUIDE"

	NotifyPayoutRequested NotificationType = "PAYOUT_REQUESTED"
	NotifyPayoutProcessed NotificationType = "PAYOUT_PROCESSED"
	NotifyPayoutFailed    NotificationType = "PAYOUT_FAILED"
	NotifyPayoutCancelled NotificationType = "PAYOUT_CANCELLED"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityMedium NotificationPriority = "MEDIUM"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// Notification is an outbox row. Dispatched flips to true once the relay
// has published the event; delivery is at-least-once.
type Notification struct {
	ID                string               `json:"id,omitempty" bson:"_id,omitempty"`
	UserID            string               `json:"userId" bson:"user_id"`
	Type              NotificationType     `json:"type" bson:"type"`
	Title             string               `json:"title" bson:"title"`
	Message           string               `json:"message" bson:"message"`
	Priority          NotificationPriority `json:"priority" bson:"priority"`
	IsRead            bool                 `json:"isRead" bson:"is_read"`
	RelatedEntityID   string               `json:"relatedEntityId,omitempty" bson:"related_entity_id,omitempty"`
	RelatedEntityType string               `json:"relatedEntityType,omitempty" bson:"related_entity_type,omitempty"`
	Dispatched        bool                 `json:"-" bson:"dispatched"`
	DispatchedAt      *time.Time           `json:"-" bson:"dispatched_at,omitempty"`
	CreatedAt         time.Time            `json:"createdAt" bson:"created_at"`
}
