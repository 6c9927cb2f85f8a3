package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the caller does not own the resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict indicates a concurrent write lost a race.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput indicates malformed or out-of-range input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrSequenceExhausted indicates the yearly document counter overflowed.
	ErrSequenceExhausted = errors.New("document sequence exhausted")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserSafeMessage returns a message suitable for API responses.
// Wrapped sentinel errors keep their public text; anything else is masked.
func UserSafeMessage(err error) string {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrUnauthorized,
		ErrConflict,
		ErrInvalidInput,
		ErrInvalidTransition,
		ErrSequenceExhausted,
		ErrInvalidCredentials,
	} {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}
