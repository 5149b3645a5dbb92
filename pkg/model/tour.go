package model

import "time"

type Tour struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GuideID        string    `json:"guideId" bson:"guide_id" validate:"required,mongodb"`
	Title          string    `json:"title" bson:"title" validate:"required,min=3,max=150"`
	Description    string    `json:"description" bson:"description" validate:"required,min=10,max=5000"`
	City           string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Category       string    `json:"category" bson:"category" validate:"required,min=2,max=50"`
	PricePerPerson float64   `json:"pricePerPerson" bson:"price_per_person" validate:"required,gt=0"`
	IsActive       bool      `json:"isActive" bson:"is_active"`
	RatingSum      float64   `json:"-" bson:"rating_sum"`
	ReviewCount    int64     `json:"reviewCount" bson:"review_count"`
	AverageRating  float64   `json:"averageRating" bson:"average_rating"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`
}

type TourUpdate struct {
	Title          string   `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Description    string   `json:"description,omitempty" validate:"omitempty,min=10,max=5000"`
	City           string   `json:"city,omitempty" validate:"omitempty,min=2,max=100"`
	Category       string   `json:"category,omitempty" validate:"omitempty,min=2,max=50"`
	PricePerPerson *float64 `json:"pricePerPerson,omitempty" validate:"omitempty,gt=0"`
	IsActive       *bool    `json:"isActive,omitempty"`
}
