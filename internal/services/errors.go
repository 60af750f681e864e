package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrNoProfile          = errors.New("no role-specific features available")
	ErrBookingConflict    = errors.New("screen already booked for an overlapping window")
	ErrStaleBooking       = errors.New("booking was changed by another request")
	ErrInvalidTransition  = errors.New("invalid booking transition")
	ErrRateLimited        = errors.New("too many booking requests")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("session expired or invalid")
	ErrEmailTaken         = errors.New("email already registered")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
