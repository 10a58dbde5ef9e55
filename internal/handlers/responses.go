package handlers

import (
	"time"

	"chatterd/internal/domain"
)

// MessageResponse is the standard body for status-only responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse is returned by successful signup and login calls.
type AuthResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// ChatMessageResponse is the DTO for a single persisted chat message. It
// carries the same fields as a live broadcast frame so the chat page
// renders history and new messages identically.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessageResponse creates a ChatMessageResponse from a domain.Message.
func NewChatMessageResponse(msg *domain.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        msg.ID,
		UserID:    msg.AuthorID,
		Username:  msg.AuthorName,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
}
