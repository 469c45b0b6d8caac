package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

const defaultOutboundBuffer = 64

type Hub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*Subscriber]bool
	buffer        int
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		logger:        log.With("component", "EventHub"),
		subscriptions: make(map[string]map[*Subscriber]bool),
		buffer:        defaultOutboundBuffer,
	}
}

// Subscribe creates a subscriber already attached to channels.
func (hub *Hub) Subscribe(channels ...string) *Subscriber {
	id := uuid.New()
	sub := &Subscriber{
		ID:       id,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, hub.buffer),
		done:     make(chan struct{}),
		Logger:   hub.logger.With("subscriberID", id),
	}
	for _, ch := range channels {
		hub.AddChannel(sub, ch)
	}
	return sub
}

func (hub *Hub) AddChannel(sub *Subscriber, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	sub.Channels[channel] = true
	subs, ok := hub.subscriptions[channel]
	if !ok {
		subs = make(map[*Subscriber]bool)
		hub.subscriptions[channel] = subs
	}
	subs[sub] = true
	hub.logger.Debug("subscriber joined channel", "subscriberID", sub.ID, "channel", channel)
}

func (hub *Hub) RemoveChannel(sub *Subscriber, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.detachLocked(sub, channel)
}

func (hub *Hub) detachLocked(sub *Subscriber, channel string) {
	delete(sub.Channels, channel)
	if subs, ok := hub.subscriptions[channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

// Broadcast never blocks: a subscriber whose buffer is full misses the message.
func (hub *Hub) Broadcast(msg Message) {
	if hub == nil || msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for sub := range hub.subscriptions[msg.Channel] {
		select {
		case sub.Outbound <- msg:
		default:
			n := sub.dropped.Add(1)
			hub.logger.Warn("dropping event; outbound buffer full", "subscriberID", sub.ID, "event", msg.Event, "dropped", n)
		}
	}
}

// CloseSubscriber detaches sub and closes its Outbound channel. Safe to call twice.
func (hub *Hub) CloseSubscriber(sub *Subscriber) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	select {
	case <-sub.done:
		return
	default:
	}
	close(sub.done)
	for ch := range sub.Channels {
		hub.detachLocked(sub, ch)
	}
	close(sub.Outbound)
}
