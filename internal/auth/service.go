package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chatterd/internal/domain"
	"chatterd/internal/session"
)

// Service orchestrates signup, login and logout. It owns the hashing
// policy and translates store errors into domain errors; nothing above it
// ever sees a raw bcrypt or database failure.
type Service struct {
	users    domain.UserStore
	sessions *session.Registry
	cost     int
	timeout  time.Duration
}

// NewService creates an auth service. cost is the bcrypt work factor and
// timeout bounds every call into the user store.
func NewService(users domain.UserStore, sessions *session.Registry, cost int, timeout time.Duration) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cost:     cost,
		timeout:  timeout,
	}
}

// Signup registers a new user. It returns domain.ErrUsernameTaken when the
// username is already registered and leaves the existing verifier intact.
func (s *Service) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User created", "username", username, "userID", user.ID)
	return user, nil
}

// Login verifies credentials and establishes a session. Unknown users and
// wrong passwords both surface as domain.ErrInvalidCredentials; the actual
// cause is only visible in the logs.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("Failed login attempt: unknown user", "username", username)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("Failed login attempt: bad password", "username", username)
		return "", nil, domain.ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("User logged in", "username", username, "userID", user.ID)
	return sessionID, user, nil
}

// Logout destroys the session. The client loses its authenticated state
// regardless of whether the session was still valid.
func (s *Service) Logout(sessionID string) {
	s.sessions.Destroy(sessionID)
}
