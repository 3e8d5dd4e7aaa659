package bus

import (
	"context"
	"time"
)

type EventType string

const (
	EventRewriteReceived  EventType = "rewrite_received"
	EventRewriteCompleted EventType = "rewrite_completed"
	EventRewriteFailed    EventType = "rewrite_failed"
	EventDeliveryFailed   EventType = "delivery_failed"
)

// Event is one relay lifecycle notification.
type Event struct {
	Type    EventType         `json:"type"`
	At      time.Time         `json:"at"`
	Channel string            `json:"channel,omitempty"`
	UserID  string            `json:"user_id,omitempty"`
	Payload map[string]string `json:"payload,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func (b *Bus) PublishEvent(ctx context.Context, event Event) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	default:
	}

	b.mu.RLock()
	subs := make([]chan Event, 0, len(b.eventSubscribers))
	for _, ch := range b.eventSubscribers {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Drop instead of blocking the publisher on slow subscribers.
		}
	}

	return true
}
