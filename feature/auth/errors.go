package auth

import "errors"

var (
	// ErrUsernameTaken is returned when the normalized username already has
	// a profile.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrCredentialCreation wraps failures from the credential system during
	// registration.
	ErrCredentialCreation = errors.New("credential creation failed")
	// ErrInvalidCredentials is returned when secret verification fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for expired, malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInconsistentIndex is returned when an email verifies against the
	// credential system but has no identifier-index entry. That state should
	// not occur if registration completed fully; it is surfaced, never
	// silently defaulted.
	ErrInconsistentIndex = errors.New("no username recorded for email")
)
