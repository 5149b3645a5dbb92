package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleStatus means a guarded status update matched no document:
	// the booking moved to another status concurrently.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)
