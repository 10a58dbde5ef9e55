package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chatterd/internal/domain"
	"chatterd/internal/pubsub"
	"chatterd/internal/session"
)

// broadcaster is the slice of Bridge the subscriber needs.
type broadcaster interface {
	Broadcast(payload []byte)
}

// Subscriber consumes accepted chat messages from the bus, persists them,
// and broadcasts them to every bound connection. A single subscription
// handler processes messages one at a time, so persist-then-broadcast for
// one message always completes before the next begins.
type Subscriber struct {
	subscriber pubsub.Subscriber
	bridge     broadcaster
	messages   domain.MessageStore
	timeout    time.Duration
}

// NewSubscriber creates the persist-and-broadcast subscriber.
func NewSubscriber(sub pubsub.Subscriber, bridge broadcaster, messages domain.MessageStore, timeout time.Duration) *Subscriber {
	return &Subscriber{
		subscriber: sub,
		bridge:     bridge,
		messages:   messages,
		timeout:    timeout,
	}
}

// Start begins listening for chat messages. Subscriptions stop when ctx is
// canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	slog.Info("Starting chat subscriber")
	return s.subscriber.Subscribe(ctx, TopicMessageReceived, s.handleIncoming)
}

// handleIncoming persists one message and broadcasts it on success.
// Persistence failure is logged and suppresses the broadcast; the sender's
// connection stays bound and is not told about the failure.
func (s *Subscriber) handleIncoming(ctx context.Context, msg pubsub.Message) error {
	var incoming struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(msg.Payload, &incoming); err != nil {
		slog.Error("Failed to unmarshal chat message", "error", err, "payload", string(msg.Payload))
		return nil
	}

	ident := session.Identity{
		UserID:   msg.UserID,
		Username: msg.Metadata[metaKeyUsername],
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	saved, err := s.messages.Append(storeCtx, ident.UserID, ident.Username, incoming.Content, time.Now().UTC())
	cancel()
	if err != nil {
		slog.Error("Failed to persist chat message, suppressing broadcast", "userID", ident.UserID, "error", err)
		return nil
	}

	payload, err := json.Marshal(ServerEvent{
		Type:      EventChatMessage,
		Content:   saved.Content,
		Username:  saved.AuthorName,
		UserID:    saved.AuthorID,
		Timestamp: saved.Timestamp,
	})
	if err != nil {
		return err
	}

	s.bridge.Broadcast(payload)
	return nil
}
