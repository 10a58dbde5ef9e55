package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"chatterd/internal/domain"
	"chatterd/internal/middleware"
)

// historyLimit caps how much history the chat page loads.
const historyLimit = 50

// ChatHandler serves the chat page and its message history.
type ChatHandler struct {
	messages  domain.MessageStore
	staticDir string
}

// NewChatHandler creates a new ChatHandler. staticDir is where the chat
// page assets live.
func NewChatHandler(messages domain.MessageStore, staticDir string) *ChatHandler {
	return &ChatHandler{messages: messages, staticDir: staticDir}
}

// HomeGet handles GET /. The auth middleware has already redirected
// unauthenticated clients to the login page.
func (h *ChatHandler) HomeGet(c echo.Context) error {
	return c.File(filepath.Join(h.staticDir, "index.html"))
}

// MessagesGet handles GET /messages, returning recent history oldest first.
func (h *ChatHandler) MessagesGet(c echo.Context) error {
	msgs, err := h.messages.Recent(c.Request().Context(), historyLimit)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to load message history", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Error loading messages"})
	}

	out := make([]ChatMessageResponse, len(msgs))
	for i := range msgs {
		out[i] = NewChatMessageResponse(&msgs[i])
	}
	return c.JSON(http.StatusOK, out)
}
