// Package domain holds the identity type and the error taxonomy shared by
// every component.
package domain

import "errors"

// Error taxonomy. Package-level errors wrap one of these so callers can
// classify failures with errors.Is.
var (
	// ErrUnauthorized signals a failed role or ownership check. No state changed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness violation (duplicate interest, application, match).
	ErrConflict = errors.New("conflict")
	// ErrInvalidState signals a transition attempted from a terminal or wrong state.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput signals malformed ranges or missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// Kind returns the taxonomy sentinel err belongs to, or nil when err is not
// one of ours.
func Kind(err error) error {
	for _, kind := range []error{ErrUnauthorized, ErrNotFound, ErrConflict, ErrInvalidState, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
