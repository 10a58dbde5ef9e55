package realtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"chatterd/internal/session"
)

// ConnState tracks the lifecycle of a single connection. A connection is
// only ever Bound by the bridge, after its identity has been resolved from
// the validated session; Disconnected is terminal.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateBound
	StateDisconnected
)

// Client represents a single websocket connection and the identity it is
// bound to. state is owned by the bridge run loop and must not be touched
// elsewhere.
type Client struct {
	ID       string
	Identity session.Identity

	state  ConnState
	conn   *websocket.Conn
	send   chan []byte
	bridge *Bridge
}

// readPump pumps frames from the websocket connection to the bridge's
// incoming channel. It runs until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.bridge.dropClient(c)
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "connectionID", c.ID, "username", c.Identity.Username)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "connectionID", c.ID, "error", err)
			}
			break
		}

		c.bridge.queueIncoming(&incomingFrame{client: c, data: data})
	}
}

// writePump pumps messages from the client's send channel to the websocket
// connection. The bridge closes the channel to stop the pump.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for {
		data, ok := <-c.send
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "connectionID", c.ID, "error", err)
			return
		}
	}
}
