package bus

import (
	"context"
	"sync"
)

const defaultBufferSize = 100

// Bus fans relay lifecycle events out to subscribers. Rewrite processing
// itself is synchronous per request; the bus exists for observability only.
type Bus struct {
	eventSubscribers      map[uint64]chan Event
	nextEventSubscriberID uint64

	done      chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

func New() *Bus {
	return &Bus{
		eventSubscribers: make(map[uint64]chan Event),
		done:             make(chan struct{}),
	}
}

func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		for id, ch := range b.eventSubscribers {
			close(ch)
			delete(b.eventSubscribers, id)
		}
		b.mu.Unlock()
	})
}

// SubscribeEvents registers a buffered subscriber that is torn down when the
// context is canceled, the returned unsubscribe runs, or the bus closes.
func (b *Bus) SubscribeEvents(ctx context.Context, buffer int) (<-chan Event, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	ch := make(chan Event, buffer)

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}

	id := b.nextEventSubscriberID
	b.nextEventSubscriberID++
	b.eventSubscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if eventCh, ok := b.eventSubscribers[id]; ok {
				delete(b.eventSubscribers, id)
				close(eventCh)
			}
			b.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-b.done:
			unsubscribe()
		}
	}()

	return ch, unsubscribe
}
