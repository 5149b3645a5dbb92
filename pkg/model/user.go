package model

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleGuide   Role = "GUIDE"
	RoleTourist Role = "TOURIST"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGuide, RoleTourist:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role" validate:"required,oneof=ADMIN GUIDE TOURIST"`
	PhoneNumber  string    `json:"phoneNumber,omitempty" bson:"phone_number,omitempty" validate:"omitempty,min=6,max=20"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	AvatarURL    string    `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty" validate:"omitempty,url"`
	IsActive     bool      `json:"isActive" bson:"is_active"`
	// Rating aggregates, maintained incrementally for guides.
	RatingSum     float64   `json:"-" bson:"rating_sum"`
	ReviewCount   int64     `json:"reviewCount" bson:"review_count"`
	AverageRating float64   `json:"averageRating" bson:"average_rating"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

type UserUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,min=6,max=20"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=200"`
	AvatarURL   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}
