package domain

import (
	"context"
	"time"
)

// Message is a single chat message. AuthorID is a weak reference to a User;
// the store never validates that the author still exists. AuthorName is the
// username at the time the message was written, denormalized so history
// renders the same as a live broadcast.
type Message struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"userId"`
	AuthorName string    `json:"username"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// MessageStore defines the contract for message persistence.
type MessageStore interface {
	// Append stores a new message and returns it with its store-assigned ID.
	Append(ctx context.Context, authorID, authorName, content string, ts time.Time) (*Message, error)

	// Recent returns up to limit messages, oldest first.
	Recent(ctx context.Context, limit int) ([]Message, error)
}
