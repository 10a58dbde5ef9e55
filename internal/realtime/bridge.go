package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"chatterd/internal/middleware"
	"chatterd/internal/pubsub"
	"chatterd/internal/session"
)

// incomingFrame is a frame read from a client, queued for the run loop.
type incomingFrame struct {
	client *Client
	data   []byte
}

// Bridge owns every live websocket connection. It binds each connection to
// the identity resolved from the validated session during the upgrade,
// forwards accepted messages to the pub/sub bus, and fans broadcasts out to
// all bound connections. All connection state is mutated only in Run.
type Bridge struct {
	publisher pubsub.Publisher

	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	incoming   chan *incomingFrame

	// done is closed when Run returns, releasing pumps that are still
	// trying to hand frames or connections to the loop.
	done chan struct{}

	// live connection count, observability only.
	liveConns int
}

// NewBridge initializes a new Bridge, ready to handle connections.
func NewBridge(pub pubsub.Publisher) *Bridge {
	return &Bridge{
		publisher:  pub,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		incoming:   make(chan *incomingFrame, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the bridge loop. It must be run in its own goroutine and
// stops when ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	slog.Info("WebSocket bridge started")
	for {
		select {
		case <-ctx.Done():
			close(b.done)
			for _, client := range b.clients {
				client.state = StateDisconnected
				close(client.send)
			}
			b.clients = make(map[string]*Client)
			b.liveConns = 0
			slog.Info("WebSocket bridge stopped")
			return

		case client := <-b.register:
			client.state = StateBound
			b.clients[client.ID] = client
			b.liveConns++
			slog.Info("Connection bound", "connectionID", client.ID, "username", client.Identity.Username, "live_connections", b.liveConns)

		case client := <-b.unregister:
			if _, ok := b.clients[client.ID]; ok {
				client.state = StateDisconnected
				delete(b.clients, client.ID)
				close(client.send)
				b.liveConns--
				slog.Info("Connection closed", "connectionID", client.ID, "username", client.Identity.Username, "live_connections", b.liveConns)
			}

		case payload := <-b.broadcast:
			for _, client := range b.clients {
				if client.state != StateBound {
					continue
				}
				select {
				case client.send <- payload:
				default:
					// Full buffer means the client is lagging or dead.
					slog.Warn("Client send channel full, dropping message", "connectionID", client.ID)
				}
			}

		case frame := <-b.incoming:
			b.handleIncoming(ctx, frame)
		}
	}
}

// handleIncoming validates and publishes a single client frame. Frames
// from connections that are not Bound are rejected without being persisted
// or broadcast.
func (b *Bridge) handleIncoming(ctx context.Context, frame *incomingFrame) {
	if frame.client.state != StateBound {
		slog.Warn("Rejecting message from unbound connection", "connectionID", frame.client.ID)
		frame.client.sendError("unauthorized")
		return
	}

	var event ClientEvent
	if err := json.Unmarshal(frame.data, &event); err != nil || event.Type != EventChatMessage {
		slog.Warn("Dropping malformed client frame", "connectionID", frame.client.ID)
		return
	}

	payload, err := json.Marshal(map[string]string{"content": event.Content})
	if err != nil {
		return
	}

	msg := pubsub.Message{
		Topic:   TopicMessageReceived,
		UserID:  frame.client.Identity.UserID,
		Payload: payload,
		Metadata: map[string]string{
			metaKeyUsername: frame.client.Identity.Username,
		},
	}
	if err := b.publisher.Publish(ctx, msg); err != nil {
		slog.Error("Failed to publish incoming message", "connectionID", frame.client.ID, "error", err)
	}
}

// sendError pushes an error frame to a single client, best effort.
func (c *Client) sendError(msg string) {
	payload, err := json.Marshal(ServerEvent{Type: "error", Error: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// Broadcast queues a payload for delivery to every bound connection,
// including the sender. After shutdown the payload is discarded.
func (b *Bridge) Broadcast(payload []byte) {
	select {
	case b.broadcast <- payload:
	case <-b.done:
	}
}

// queueIncoming hands a client frame to the run loop, dropping it once the
// bridge has shut down.
func (b *Bridge) queueIncoming(frame *incomingFrame) {
	select {
	case b.incoming <- frame:
	case <-b.done:
	}
}

// dropClient asks the run loop to unregister a connection. After shutdown
// the loop has already released every connection, so this is a no-op.
func (b *Bridge) dropClient(c *Client) {
	select {
	case b.unregister <- c:
	case <-b.done:
	}
}

// Handler returns the echo handler for the websocket endpoint. The request
// must already carry an identity resolved by the auth middleware; anything
// else is rejected before the upgrade.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := c.Get(middleware.IdentityContextKey).(session.Identity)
		if !ok {
			slog.Error("WebSocket upgrade without authenticated identity")
			return c.String(http.StatusUnauthorized, "User not authenticated")
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &Client{
			ID:       uuid.NewString(),
			Identity: ident,
			state:    StateConnecting,
			conn:     conn,
			send:     make(chan []byte, 256),
			bridge:   b,
		}
		select {
		case b.register <- client:
		case <-b.done:
			conn.Close(websocket.StatusGoingAway, "Server shutting down")
			return nil
		}

		go client.writePump()
		go client.readPump()

		return nil
	}
}
