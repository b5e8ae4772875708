package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced station, charger, booking or
	// payment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlotConflict is returned when a requested interval overlaps an
	// existing confirmed booking on the same charger.
	ErrSlotConflict = errors.New("slot is already booked for this time")
	// ErrForbidden is returned when the actor does not own the resource.
	ErrForbidden = errors.New("user not authorized")
	// ErrInvalidTransition is returned for cancel/complete on a booking that
	// is not in the CONFIRMED state.
	ErrInvalidTransition = errors.New("booking state does not allow this transition")
	// ErrValidation wraps malformed or missing input rejected before any
	// conflict logic runs.
	ErrValidation = errors.New("validation failed")
	// ErrEmailInUse is returned when registering a duplicate email.
	ErrEmailInUse = errors.New("email already registered")
	// ErrReviewExists is returned when a booking already has a review.
	ErrReviewExists = errors.New("review already submitted for this booking")
)
