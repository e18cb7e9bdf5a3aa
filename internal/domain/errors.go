package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or does not exist within the given trip.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. blank display name, max uses below 1).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller lacks the relationship to the trip
// (organizer, self, or membership) that the operation requires.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCode is returned for any invite or claim code that does not
// resolve to a usable record. Wrong, expired, revoked and exhausted codes are
// deliberately indistinguishable to the caller.
var ErrInvalidCode = errors.New("invalid or expired code")
