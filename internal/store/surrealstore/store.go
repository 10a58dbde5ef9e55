// Package surrealstore implements the credential and message stores on
// SurrealDB, the document-store variant of the storage layout. Users live
// in the user table and messages in the message table; message.author is an
// informational reference, not a record link the database enforces.
package surrealstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"chatterd/internal/config"
	"chatterd/internal/domain"
)

type userRecord struct {
	ID       *surrealmodels.RecordID `json:"id,omitempty"`
	Username string                  `json:"username"`
	Password string                  `json:"password"`
}

type messageRecord struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Author    string                  `json:"author"`
	Username  string                  `json:"username"`
	Content   string                  `json:"content"`
	Timestamp time.Time               `json:"timestamp"`
}

// Store implements domain.UserStore and domain.MessageStore.
type Store struct {
	db *surrealdb.DB
}

// Open creates and configures a new SurrealDB connection.
func Open(ctx context.Context, cfg config.Provider) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.GetSurrealURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	authData := &surrealdb.Auth{
		Username: cfg.GetSurrealUser(),
		Password: cfg.GetSurrealPass(),
	}

	if _, err = db.SignIn(ctx, authData); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if err = db.Use(ctx, cfg.GetSurrealNs(), cfg.GetSurrealDb()); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	// The unique index is what makes duplicate signups fail at the store
	// even when two requests race past the pre-check in Create.
	if err = exec(ctx, db, "DEFINE INDEX IF NOT EXISTS user_username ON TABLE user FIELDS username UNIQUE"); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to define username index: %w", err)
	}

	slog.Info("Successfully signed in to SurrealDB")
	return &Store{db: db}, nil
}

// Close shuts down the database connection.
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// Create inserts a new user, failing with ErrUsernameTaken when the
// username is already registered. The check-then-create pair is not a
// transaction; the unique index defined in Open backs it up, so a racing
// duplicate fails at the CREATE instead.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	existing, err := queryOne[userRecord](ctx, s.db, "SELECT * FROM user WHERE username = $username", map[string]any{"username": username})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	created, err := queryOne[userRecord](ctx, s.db,
		"CREATE user SET username = $username, password = $password RETURN AFTER",
		map[string]any{"username": username, "password": passwordHash})
	if err != nil {
		if isIndexViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if created == nil {
		return nil, fmt.Errorf("%w: user was not created", domain.ErrStoreUnavailable)
	}

	return toDomainUser(created), nil
}

// FindByUsername returns the user with the given username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := queryOne[userRecord](ctx, s.db, "SELECT * FROM user WHERE username = $username", map[string]any{"username": username})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return toDomainUser(user), nil
}

// Append stores a new chat message. The author reference is not validated.
func (s *Store) Append(ctx context.Context, authorID, authorName, content string, ts time.Time) (*domain.Message, error) {
	created, err := queryOne[messageRecord](ctx, s.db,
		"CREATE message SET author = $author, username = $username, content = $content, timestamp = $timestamp RETURN AFTER",
		map[string]any{"author": authorID, "username": authorName, "content": content, "timestamp": ts})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if created == nil {
		return nil, fmt.Errorf("%w: message was not created", domain.ErrStoreUnavailable)
	}
	return toDomainMessage(created), nil
}

// Recent returns up to limit messages, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	records, err := query[messageRecord](ctx, s.db,
		"SELECT * FROM message ORDER BY timestamp DESC LIMIT $limit",
		map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	msgs := make([]domain.Message, len(records))
	for i := range records {
		// Reverse into send order, newest last.
		msgs[len(records)-1-i] = *toDomainMessage(&records[i])
	}
	return msgs, nil
}

// isIndexViolation reports whether err is SurrealDB rejecting a write that
// would duplicate a value covered by a unique index. The server phrases it
// as "Database index `...` already contains ...".
func isIndexViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already contains")
}

func toDomainUser(rec *userRecord) *domain.User {
	u := &domain.User{
		Username:     rec.Username,
		PasswordHash: rec.Password,
	}
	if rec.ID != nil {
		u.ID = rec.ID.String()
	}
	return u
}

func toDomainMessage(rec *messageRecord) *domain.Message {
	m := &domain.Message{
		AuthorID:   rec.Author,
		AuthorName: rec.Username,
		Content:    rec.Content,
		Timestamp:  rec.Timestamp,
	}
	if rec.ID != nil {
		m.ID = rec.ID.String()
	}
	return m
}
