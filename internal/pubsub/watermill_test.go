package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	received := make(chan Message, 1)
	err := bridge.Subscribe(context.Background(), "test.topic", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(context.Background(), Message{
		Topic:    "test.topic",
		UserID:   "user:1",
		Payload:  []byte("hello"),
		Metadata: map[string]string{"username": "alice"},
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "test.topic", msg.Topic)
		assert.Equal(t, "user:1", msg.UserID)
		assert.Equal(t, []byte("hello"), msg.Payload)
		assert.Equal(t, "alice", msg.Metadata["username"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestWatermillBridge_PreservesOrder(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	var got []string
	done := make(chan struct{})
	err := bridge.Subscribe(context.Background(), "test.order", func(ctx context.Context, msg Message) error {
		got = append(got, string(msg.Payload))
		if len(got) == 3 {
			close(done)
		}
		return nil
	})
	require.NoError(t, err)

	for _, p := range []string{"one", "two", "three"} {
		require.NoError(t, bridge.Publish(context.Background(), Message{Topic: "test.order", Payload: []byte(p)}))
	}

	select {
	case <-done:
		assert.Equal(t, []string{"one", "two", "three"}, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out, received %d of 3 messages", len(got))
	}
}
