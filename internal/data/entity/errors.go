package entity

import "errors"

// Domain errors surfaced to callers. The adaptor layer maps each one to a
// distinct HTTP status code; they must never be conflated.
var (
	ErrClassNotFound         = errors.New("class not found")
	ErrClassNotBookable      = errors.New("class is not bookable")
	ErrClassFull             = errors.New("class is fully booked")
	ErrDuplicateBooking      = errors.New("customer already has an active booking for this class")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotPayable     = errors.New("booking is not awaiting payment")
	ErrPayoutAccountNotFound = errors.New("payout account not found")
)
