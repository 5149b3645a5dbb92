package model

import "time"

type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "MORNING"
	TimeOfDayAfternoon TimeOfDay = "AFTERNOON"
	TimeOfDayEvening   TimeOfDay = "EVENING"
)

// SlotBooking is the embedded per-slot booking state. A slot binds to at
// most one tour at a time; Count never exceeds MaxGuests.
type SlotBooking struct {
	IsBooked  bool   `json:"isBooked" bson:"is_booked"`
	Count     int    `json:"count" bson:"count"`
	TourID    string `json:"tourId,omitempty" bson:"tour_id,omitempty"`
	MaxGuests int    `json:"maxGuests" bson:"max_guests"`
}

func (b SlotBooking) Remaining() int {
	remaining := b.MaxGuests - b.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Availability is a per-guide, per-date, per-start-time capacity record.
// Start/End times are stored in normalized 12-hour form ("9:00 AM").
// Unique index: (guide_id, specific_date, start_time).
type Availability struct {
	ID             string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GuideID        string      `json:"guideId" bson:"guide_id" validate:"required,mongodb"`
	SpecificDate   time.Time   `json:"specificDate" bson:"specific_date" validate:"required"`
	StartTime      string      `json:"startTime" bson:"start_time" validate:"required,clock_12h"`
	EndTime        string      `json:"endTime" bson:"end_time" validate:"required,clock_12h"`
	TimeOfDay      TimeOfDay   `json:"timeOfDay" bson:"time_of_day" validate:"omitempty,oneof=MORNING AFTERNOON EVENING"`
	DurationMins   int         `json:"durationMins" bson:"duration_mins" validate:"omitempty,min=30"`
	MaxGroupSize   int         `json:"maxGroupSize" bson:"max_group_size" validate:"required,min=1,max=100"`
	PricePerPerson float64     `json:"pricePerPerson" bson:"price_per_person" validate:"required,gt=0"`
	Booking        SlotBooking `json:"todaysTourist" bson:"todays_tourist"`
	IsAvailable    bool        `json:"isAvailable" bson:"is_available"`
	CreatedAt      time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" bson:"updated_at"`
}

type AvailabilityUpdate struct {
	SpecificDate   *time.Time `json:"specificDate,omitempty"`
	StartTime      string     `json:"startTime,omitempty" validate:"omitempty,clock_12h"`
	EndTime        string     `json:"endTime,omitempty" validate:"omitempty,clock_12h"`
	MaxGroupSize   *int       `json:"maxGroupSize,omitempty" validate:"omitempty,min=1,max=100"`
	PricePerPerson *float64   `json:"pricePerPerson,omitempty" validate:"omitempty,gt=0"`
}

// SlotCheck is the read-side answer to "can this slot take a booking".
type SlotCheck struct {
	Available      bool   `json:"available"`
	Reason         string `json:"reason,omitempty"`
	AvailableSlots int    `json:"availableSlots,omitempty"`
	CurrentGuests  int    `json:"currentGuests"`
	MaxGuests      int    `json:"maxGuests"`
}
