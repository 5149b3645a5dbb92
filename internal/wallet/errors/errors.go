package errors

import "errors"

var (
	ErrNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds means a conditional debit matched no document.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)
