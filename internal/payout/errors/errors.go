package errors

import "errors"

var (
	ErrNotFound    = errors.New("payout not found")
	ErrInvalidID   = errors.New("invalid payout ID")
	ErrStaleStatus = errors.New("payout status changed")
)
