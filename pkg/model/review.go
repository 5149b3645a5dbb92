package model

import "time"

type ReviewTarget string

const (
	ReviewTargetTour  ReviewTarget = "TOUR"
	ReviewTargetGuide ReviewTarget = "GUIDE"
)

// Review is bound to a completed booking. Unique index on
// (booking_id, target): one tour review and one guide review per booking.
type Review struct {
	ID              string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID       string       `json:"bookingId" bson:"booking_id" validate:"required,mongodb"`
	TourID          string       `json:"tourId" bson:"tour_id"`
	GuideID         string       `json:"guideId,omitempty" bson:"guide_id,omitempty"`
	AuthorID        string       `json:"authorId" bson:"author_id"`
	Target          ReviewTarget `json:"target" bson:"target" validate:"required,oneof=TOUR GUIDE"`
	Rating          int          `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Content         string       `json:"content,omitempty" bson:"content,omitempty" validate:"omitempty,max=2000"`
	Photos          []string     `json:"photos,omitempty" bson:"photos,omitempty" validate:"omitempty,max=10,dive,url"`
	ExperienceTags  []string     `json:"experienceTags,omitempty" bson:"experience_tags,omitempty" validate:"omitempty,max=10,dive,min=2,max=30"`
	IsEdited        bool         `json:"isEdited" bson:"is_edited"`
	VerifiedBooking bool         `json:"verifiedBooking" bson:"verified_booking"`
	CreatedAt       time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updated_at"`
}

type ReviewCreate struct {
	BookingID      string       `json:"bookingId" validate:"required,mongodb"`
	Target         ReviewTarget `json:"target" validate:"required,oneof=TOUR GUIDE"`
	Rating         int          `json:"rating" validate:"required,min=1,max=5"`
	Content        string       `json:"content,omitempty" validate:"omitempty,max=2000"`
	Photos         []string     `json:"photos,omitempty" validate:"omitempty,max=10,dive,url"`
	ExperienceTags []string     `json:"experienceTags,omitempty" validate:"omitempty,max=10,dive,min=2,max=30"`
}

type ReviewUpdate struct {
	Rating         *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Content        *string  `json:"content,omitempty" validate:"omitempty,max=2000"`
	Photos         []string `json:"photos,omitempty" validate:"omitempty,max=10,dive,url"`
	ExperienceTags []string `json:"experienceTags,omitempty" validate:"omitempty,max=10,dive,min=2,max=30"`
}
