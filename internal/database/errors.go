package database

import "errors"

// Sentinel errors shared by the repositories. Handlers translate these to
// HTTP status codes; anything else is treated as an internal store failure.
var (
	// ErrNotFound is returned when a requested row does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that already
	// has an account.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrRoomUnavailable is returned when a booking would overlap an
	// existing non-cancelled booking on the same room.
	ErrRoomUnavailable = errors.New("room is not available for the selected dates")

	// ErrInvalidBookingState is returned when a transition is requested on a
	// booking whose current status does not allow it.
	ErrInvalidBookingState = errors.New("invalid booking status")

	// ErrAmountMismatch is returned when a payment amount does not equal the
	// booking's total price.
	ErrAmountMismatch = errors.New("payment amount does not match booking total")

	// ErrCapacityExceeded is returned when a booking requests more guests
	// than the room holds.
	ErrCapacityExceeded = errors.New("guest count exceeds room capacity")

	// ErrRateLimited is returned when too many failed login attempts were
	// made inside the configured window.
	ErrRateLimited = errors.New("too many attempts, try again later")

	// ErrReviewNotAllowed is returned when a user reviews a hotel without a
	// completed stay there.
	ErrReviewNotAllowed = errors.New("review requires a completed stay")

	// ErrAlreadyReviewed is returned when a user posts a second review for
	// the same hotel.
	ErrAlreadyReviewed = errors.New("hotel already reviewed")
)
