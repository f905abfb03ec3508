package domain

import "errors"

// Sentinel errors for the submission and command pipelines. Transport
// handlers branch on these with errors.Is and turn them into a single
// user-facing reply; they never crash the process.
var (
	// ErrMalformedInput covers structural or format problems detected
	// by the itinerary parser.
	ErrMalformedInput = errors.New("malformed itinerary")

	// ErrStationNotFound means the provider returned no location
	// candidate for a station name.
	ErrStationNotFound = errors.New("station not found")

	// ErrNoSuitableConnection means the provider returned zero, or
	// more than one, exactly-matching single-leg connection. Ambiguity
	// is a failure: the resolver never guesses among duplicates.
	ErrNoSuitableConnection = errors.New("no suitable connection")

	// ErrConflictUnresolved means a get-or-create retry after a proven
	// uniqueness conflict still found no row. This is an internal
	// invariant violation, not a user error.
	ErrConflictUnresolved = errors.New("conflict left no row behind")

	// ErrJourneyNotFound means a reply-scoped command points at a
	// message with no journey behind it (deleted, or a duplicate).
	ErrJourneyNotFound = errors.New("journey not found")

	// ErrUserNotFound means a username lookup matched no user. Distinct
	// from infrastructure failures, which pass through unwrapped.
	ErrUserNotFound = errors.New("user not found")

	// ErrValidation covers bad prices, colors and usernames.
	ErrValidation = errors.New("validation failed")

	// ErrUsernameTaken signals a username collision.
	ErrUsernameTaken = errors.New("username already in use")
)
