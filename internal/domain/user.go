package domain

import "context"

// User represents the core user model in the application domain.
// PasswordHash is the one-way verifier; the plaintext password is never
// stored or returned.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// UserStore defines the contract for credential storage. It lives in the
// domain because it's a requirement OF the domain, not of the database
// implementation.
type UserStore interface {
	// Create inserts a new user. It returns ErrUsernameTaken if the
	// username is already registered.
	Create(ctx context.Context, username, passwordHash string) (*User, error)

	// FindByUsername returns the user with the given username, or
	// ErrNotFound if no such user exists.
	FindByUsername(ctx context.Context, username string) (*User, error)
}
