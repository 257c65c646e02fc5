package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrParseMiss no (name, price) pair could be read from the recognized text.
	ErrParseMiss = errors.New("no item found in recognized text")
	// ErrOutOfRange cart index is not a valid position. Contract violation by the caller.
	ErrOutOfRange = errors.New("cart index out of range")
	// ErrEmptyCart finishing a trip with no items.
	ErrEmptyCart = errors.New("cart is empty")

	ErrLocationUnresolved = errors.New("location could not be resolved to a postal code")
	ErrRateLookupFailed   = errors.New("sales tax rate lookup failed")

	ErrNoActiveTrip   = errors.New("no shopping trip in progress")
	ErrTripInProgress = errors.New("a shopping trip is already in progress")
)
