package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterd/internal/domain"
	"chatterd/internal/handlers"
)

// memMessageStore is an in-memory MessageStore for handler tests.
type memMessageStore struct {
	messages []domain.Message
	err      error
}

func (m *memMessageStore) Append(ctx context.Context, authorID, authorName, content string, ts time.Time) (*domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	msg := domain.Message{ID: "msg:1", AuthorID: authorID, AuthorName: authorName, Content: content, Timestamp: ts}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memMessageStore) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.messages, nil
}

func TestMessagesGet(t *testing.T) {
	store := &memMessageStore{messages: []domain.Message{
		{ID: "1", AuthorID: "user:alice", AuthorName: "alice", Content: "hello", Timestamp: time.Now().UTC()},
		{ID: "2", AuthorID: "user:bob", AuthorName: "bob", Content: "hi", Timestamp: time.Now().UTC()},
	}}
	h := handlers.NewChatHandler(store, t.TempDir())

	e := echo.New()
	e.GET("/messages", h.MessagesGet)

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []handlers.ChatMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)

	// History carries the author's username, just like a live broadcast.
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "user:alice", got[0].UserID)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "bob", got[1].Username)
}

func TestMessagesGetStoreFailure(t *testing.T) {
	store := &memMessageStore{err: domain.ErrStoreUnavailable}
	h := handlers.NewChatHandler(store, t.TempDir())

	e := echo.New()
	e.GET("/messages", h.MessagesGet)

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
