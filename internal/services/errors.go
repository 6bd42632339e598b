package services

import "errors"

// Business-rule failures are distinguishable from infrastructure failures:
// the HTTP boundary maps the former to 4xx and the latter to 5xx.
var (
	// ErrDuplicateLocation signals an Add for a (device, latitude, longitude)
	// triple that is already saved.
	ErrDuplicateLocation = errors.New("location is already saved for this device")

	// ErrLocationNotFound signals a Delete or reorder that targeted a row the
	// device does not have.
	ErrLocationNotFound = errors.New("favorite location not found")

	// ErrPersistenceFailure signals that the store reported zero rows affected
	// on an operation expected to affect one.
	ErrPersistenceFailure = errors.New("favorite location could not be persisted")

	// ErrUpstreamUnavailable is the only failure the gateway surfaces; the
	// concrete cause is logged, never returned.
	ErrUpstreamUnavailable = errors.New("upstream weather service unavailable")

	// ErrInvalidRequest signals missing required fields, rejected before any
	// store or network call.
	ErrInvalidRequest = errors.New("required fields are missing")
)
