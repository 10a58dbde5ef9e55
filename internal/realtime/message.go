package realtime

import "time"

// Pub/Sub topics owned by the realtime package.
const (
	// TopicMessageReceived carries raw chat messages from a bound
	// connection to the persist-and-broadcast subscriber.
	TopicMessageReceived = "chat.message.received"
)

// The single websocket event type, mirroring the wire protocol the web
// client speaks.
const EventChatMessage = "chat message"

// metadata key carrying the sender's username across the bus.
const metaKeyUsername = "username"

// ClientEvent is a frame received from a client.
type ClientEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ServerEvent is a frame sent to clients. Error frames only populate Type
// and Error.
type ServerEvent struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Username  string    `json:"username,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Error     string    `json:"error,omitempty"`
}
