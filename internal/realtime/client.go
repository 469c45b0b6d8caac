package realtime

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

// Subscriber receives every message broadcast on its channels. Outbound is
// closed by Hub.CloseSubscriber.
type Subscriber struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	done     chan struct{}
	dropped  atomic.Int64
	Logger   *logger.Logger
}

// Done is closed when the subscriber is torn down.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Dropped counts messages missed because Outbound was full.
func (s *Subscriber) Dropped() int64 { return s.dropped.Load() }

// Next blocks for the next message. ok is false once the subscriber is
// closed or ctx ends.
func (s *Subscriber) Next(ctx context.Context) (msg Message, ok bool) {
	select {
	case msg, ok = <-s.Outbound:
		return msg, ok
	case <-ctx.Done():
		return Message{}, false
	}
}

// Pending returns the messages already buffered without waiting.
func (s *Subscriber) Pending() []Message {
	var out []Message
	for {
		select {
		case msg, ok := <-s.Outbound:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}
