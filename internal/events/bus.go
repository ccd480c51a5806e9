// Package events implements the in-process change-event bus. Listeners are
// invoked synchronously in registration order; a panicking listener is
// logged and does not block delivery to later listeners.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xiaoliunewbig/fantasydb/internal/logger"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Listener receives change events. Listeners must not retain or mutate the
// event's Changes map.
type Listener func(types.ChangeEvent)

// Subscription identifies one registered listener for Unsubscribe.
type Subscription uint64

type entry struct {
	id Subscription
	fn Listener
}

// Bus is a publish/subscribe fan-out for change events. The zero value is
// not usable; call NewBus.
type Bus struct {
	mu        sync.Mutex
	listeners []entry
	nextID    Subscription
	log       *zap.SugaredLogger
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{log: logger.For("events")}
}

// Subscribe registers a listener and returns its subscription handle.
func (b *Bus) Subscribe(fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.listeners = append(b.listeners, entry{id: b.nextID, fn: fn})
	return b.nextID
}

// Unsubscribe removes a listener. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.listeners {
		if e.id == sub {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every listener in registration order. The
// listener list is snapshotted under the lock and invoked without it, so
// listeners may subscribe or unsubscribe reentrantly.
func (b *Bus) Publish(event types.ChangeEvent) {
	b.mu.Lock()
	snapshot := make([]entry, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, e := range snapshot {
		b.deliver(e, event)
	}
}

func (b *Bus) deliver(e entry, event types.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("listener panicked",
				"kind", event.Kind, "entity", event.Key().String(), "panic", r)
		}
	}()
	e.fn(event)
}

// Len reports the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
