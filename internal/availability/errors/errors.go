package errors

import "errors"

var (
	ErrNotFound = errors.New("availability not found")

	ErrInvalidID = errors.New("invalid availability ID format")

	// ErrSlotTaken means the slot is already bound to a different tour.
	ErrSlotTaken = errors.New("slot already booked for a different tour")

	// ErrCapacity means the reservation would exceed the slot's max guests.
	ErrCapacity = errors.New("insufficient slot capacity")
)
