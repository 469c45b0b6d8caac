package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
	}
	return Message{}
}

func TestHubOrderingAndClose(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	channel := SessionChannel(uuid.NewString())

	sub := hub.Subscribe(channel)
	hub.Broadcast(Message{Channel: channel, Event: EventMessageAppended, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventMessageConfirmed, Data: map[string]any{"seq": 1}})

	if got := recvMessage(t, sub.Outbound, time.Second); got.Event != EventMessageAppended {
		t.Fatalf("first event: want=%s got=%s", EventMessageAppended, got.Event)
	}
	if got := recvMessage(t, sub.Outbound, time.Second); got.Event != EventMessageConfirmed {
		t.Fatalf("second event: want=%s got=%s", EventMessageConfirmed, got.Event)
	}

	hub.CloseSubscriber(sub)
	hub.CloseSubscriber(sub)
	if _, ok := <-sub.Outbound; ok {
		t.Fatalf("outbound should be closed")
	}

	// Broadcasting after close must not panic or deliver.
	hub.Broadcast(Message{Channel: channel, Event: EventMessageRolledBack})
}

func TestHubChannelIsolation(t *testing.T) {
	hub := NewHub(nil)
	docs := hub.Subscribe(ChannelDocuments)
	other := hub.Subscribe(SessionChannel("x"))
	defer hub.CloseSubscriber(docs)
	defer hub.CloseSubscriber(other)

	hub.Broadcast(Message{Channel: ChannelDocuments, Event: EventDocumentUploaded})

	recvMessage(t, docs.Outbound, time.Second)
	select {
	case msg := <-other.Outbound:
		t.Fatalf("unexpected event on other channel: %+v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	hub.buffer = 1
	sub := hub.Subscribe(ChannelDocuments)
	defer hub.CloseSubscriber(sub)

	hub.Broadcast(Message{Channel: ChannelDocuments, Event: EventDocumentStatus})
	hub.Broadcast(Message{Channel: ChannelDocuments, Event: EventDocumentDeleted})

	if got := recvMessage(t, sub.Outbound, time.Second); got.Event != EventDocumentStatus {
		t.Fatalf("want first event kept got=%s", got.Event)
	}
	select {
	case msg := <-sub.Outbound:
		t.Fatalf("second event should have been dropped: %+v", msg)
	default:
	}
}

func TestRemoveChannel(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe(ChannelDocuments)
	defer hub.CloseSubscriber(sub)
	hub.RemoveChannel(sub, ChannelDocuments)
	hub.Broadcast(Message{Channel: ChannelDocuments, Event: EventDocumentDeleted})
	select {
	case msg := <-sub.Outbound:
		t.Fatalf("unexpected event after unsubscribe: %+v", msg)
	default:
	}
}

func TestDroppedCountsOverflow(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe(ChannelDocuments)
	defer hub.CloseSubscriber(sub)
	for i := 0; i < defaultOutboundBuffer+3; i++ {
		hub.Broadcast(Message{Channel: ChannelDocuments, Event: EventDocumentDeleted})
	}
	if got := sub.Dropped(); got != 3 {
		t.Fatalf("Dropped() = %d, want 3", got)
	}
	if got := len(sub.Pending()); got != defaultOutboundBuffer {
		t.Fatalf("Pending() returned %d messages, want %d", got, defaultOutboundBuffer)
	}
	if got := sub.Pending(); len(got) != 0 {
		t.Fatalf("second Pending() = %d messages, want 0", len(got))
	}
}

func TestNextStopsOnContextAndClose(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe(ChannelDocuments)

	hub.Broadcast(Message{Channel: ChannelDocuments, Event: EventDocumentDeleted})
	msg, ok := sub.Next(context.Background())
	if !ok || msg.Event != EventDocumentDeleted {
		t.Fatalf("Next() = %+v, %v", msg, ok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := sub.Next(ctx); ok {
		t.Fatal("Next() returned a message after context expiry")
	}

	hub.CloseSubscriber(sub)
	if _, ok := sub.Next(context.Background()); ok {
		t.Fatal("Next() returned a message after close")
	}
}
