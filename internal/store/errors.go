// Sentinel errors shared by the store operations. Handlers translate
// them into HTTP status codes: ErrValidation to 400, ErrUnauthorized to
// 403, ErrNotFound to 404, and the conflict family to 409. Conflicts are
// benign and retryable: the caller restarts allocation from scratch.
package store

import "errors"

// ErrNotFound is returned when a referenced lot, spot, booking, vehicle
// or waitlist entry does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned when the caller acts on a resource owned
// by another user.
var ErrUnauthorized = errors.New("unauthorized")

// ErrValidation is returned for user-input failures: empty plates,
// too-soon scheduled starts, shrinking a lot below its occupied spots,
// deleting an occupied spot or lot.
var ErrValidation = errors.New("invalid request")

// ErrSpotConflict is returned when a spot was claimed by someone else
// between the caller's read and its write. The write that would have
// created a second owner failed inside the transaction; no partial state
// survives.
var ErrSpotConflict = errors.New("spot no longer available")

// ErrHoldExpired is returned when the caller's spot hold lapsed or was
// invalidated before the booking could be confirmed.
var ErrHoldExpired = errors.New("spot hold expired")

// ErrAlreadyReleased is reported when releasing a booking that is not
// active. It is non-fatal: cost and state are left unchanged.
var ErrAlreadyReleased = errors.New("booking already released")
