package domain

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAssignable is returned when a donation is no longer pending.
	ErrNotAssignable = errors.New("donation is not available for assignment")

	// ErrNGOUnavailable is returned when assigning to an NGO that is not accepting donations.
	ErrNGOUnavailable = errors.New("ngo is not available")
)

// ErrInvalidInput is returned when a field fails a domain rule, such as a
// location outside WGS 84 ranges or an unknown status.
var ErrInvalidInput = errors.New("invalid input")

// ErrUpstream is returned when an external dependency such as the geocoder
// answers with an error.
var ErrUpstream = errors.New("upstream service error")

// ErrConflict is returned when a write collides with a unique constraint.
var ErrConflict = errors.New("already exists")
