package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterd/internal/domain"
	"chatterd/internal/pubsub"
)

// fakeMessageStore records appends and can be forced to fail.
type fakeMessageStore struct {
	appended []domain.Message
	fail     bool
}

func (f *fakeMessageStore) Append(ctx context.Context, authorID, authorName, content string, ts time.Time) (*domain.Message, error) {
	if f.fail {
		return nil, domain.ErrStoreUnavailable
	}
	msg := domain.Message{ID: "msg:1", AuthorID: authorID, AuthorName: authorName, Content: content, Timestamp: ts}
	f.appended = append(f.appended, msg)
	return &msg, nil
}

func (f *fakeMessageStore) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	return f.appended, nil
}

// fakeBroadcaster collects broadcast payloads.
type fakeBroadcaster struct {
	payloads chan []byte
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{payloads: make(chan []byte, 16)}
}

func (f *fakeBroadcaster) Broadcast(payload []byte) {
	f.payloads <- payload
}

func incomingMsg(userID, username, content string) pubsub.Message {
	payload, _ := json.Marshal(map[string]string{"content": content})
	return pubsub.Message{
		Topic:    TopicMessageReceived,
		UserID:   userID,
		Payload:  payload,
		Metadata: map[string]string{metaKeyUsername: username},
	}
}

func TestSubscriberPersistsThenBroadcasts(t *testing.T) {
	store := &fakeMessageStore{}
	bcast := newFakeBroadcaster()
	sub := NewSubscriber(nil, bcast, store, time.Second)

	err := sub.handleIncoming(context.Background(), incomingMsg("user:1", "alice", "hello"))
	require.NoError(t, err)

	require.Len(t, store.appended, 1)
	assert.Equal(t, "user:1", store.appended[0].AuthorID)
	assert.Equal(t, "alice", store.appended[0].AuthorName)
	assert.Equal(t, "hello", store.appended[0].Content)

	select {
	case payload := <-bcast.payloads:
		var event ServerEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, EventChatMessage, event.Type)
		assert.Equal(t, "hello", event.Content)
		assert.Equal(t, "alice", event.Username)
		assert.Equal(t, "user:1", event.UserID)
		assert.False(t, event.Timestamp.IsZero())
	default:
		t.Fatal("expected exactly one broadcast")
	}
	assert.Empty(t, bcast.payloads)
}

func TestPersistFailureSuppressesBroadcast(t *testing.T) {
	store := &fakeMessageStore{fail: true}
	bcast := newFakeBroadcaster()
	sub := NewSubscriber(nil, bcast, store, time.Second)

	// The failure is swallowed: no error bubbles up and nothing is broadcast.
	err := sub.handleIncoming(context.Background(), incomingMsg("user:1", "alice", "hello"))
	require.NoError(t, err)
	assert.Empty(t, bcast.payloads)
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	store := &fakeMessageStore{}
	bcast := newFakeBroadcaster()
	sub := NewSubscriber(nil, bcast, store, time.Second)

	err := sub.handleIncoming(context.Background(), pubsub.Message{
		Topic:   TopicMessageReceived,
		Payload: []byte("{not json"),
	})
	require.NoError(t, err)
	assert.Empty(t, store.appended)
	assert.Empty(t, bcast.payloads)
}

func TestSubscriberDeliversInSendOrder(t *testing.T) {
	store := &fakeMessageStore{}
	bcast := newFakeBroadcaster()
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSubscriber(bus, bcast, store, time.Second)
	require.NoError(t, sub.Start(ctx))

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, bus.Publish(ctx, incomingMsg("user:1", "alice", content)))
	}

	var got []string
	for len(got) < 3 {
		select {
		case payload := <-bcast.payloads:
			var event ServerEvent
			require.NoError(t, json.Unmarshal(payload, &event))
			got = append(got, event.Content)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, received %d of 3 broadcasts", len(got))
		}
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

