package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Identity is the (userId, username) pair a session resolves to.
type Identity struct {
	UserID   string
	Username string
}

// Registry is the server-side session table. It is owned by the server:
// created at startup, passed by reference to everything that needs it, and
// discarded on shutdown. Sessions live until Destroy is called or the
// process exits; there is no timer-based expiry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Identity
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Identity),
	}
}

// Create issues a new session for the given identity and returns its
// opaque, unguessable id.
func (r *Registry) Create(userID, username string) (string, error) {
	id, err := generateToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	r.mu.Lock()
	r.sessions[id] = Identity{UserID: userID, Username: username}
	r.mu.Unlock()

	return id, nil
}

// Validate resolves a session id to its identity. The second return value
// is false for unknown or destroyed sessions.
func (r *Registry) Validate(id string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.sessions[id]
	return ident, ok
}

// Destroy removes a session. It is idempotent; destroying an unknown id is
// a no-op.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// generateToken creates a cryptographically secure random token.
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
