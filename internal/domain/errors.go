package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	// ErrUsernameTaken indicates a sign-up attempt failed because the
	// username is already present in the system.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials indicates a sign-in attempt failed due to an
	// incorrect username or password. The two causes are deliberately not
	// distinguishable through this error.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("requested resource not found")

	// ErrStoreUnavailable indicates the backing store could not serve the
	// request (connection failure, timeout).
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnauthorized indicates an action that requires an authenticated
	// identity was attempted without one.
	ErrUnauthorized = errors.New("unauthorized")
)
