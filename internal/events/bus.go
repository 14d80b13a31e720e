package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler receives events. Handlers run on the emitting goroutine and must not block.
type Handler func(*Event)

type subscription struct {
	id        string
	eventType EventType
	handler   Handler
}

// Bus is an in-process publish/subscribe hub
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	log         zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[EventType][]subscription),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for eventType and returns an id for Unsubscribe
func (b *Bus) Subscribe(eventType EventType, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// Unsubscribe removes the subscription with the given id. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			remaining := make([]subscription, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.subscribers, eventType)
			} else {
				b.subscribers[eventType] = remaining
			}
			return
		}
	}
}

// Emit delivers event to every subscriber of its type.
// A panicking handler is logged and does not affect the others.
func (b *Bus) Emit(event *Event) {
	b.mu.RLock()
	subs := b.subscribers[event.Type]
	b.mu.RUnlock()

	for _, sub := range subs {
		b.deliver(sub, event)
	}
}

// SubscriberCount returns the number of handlers registered for eventType
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

func (b *Bus) deliver(sub subscription, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Str("subscription", sub.id).
				Msg("Event handler panicked")
		}
	}()
	sub.handler(event)
}
