package localcache

import (
	"github.com/asaskevich/EventBus"
)

const changeTopic = "localcache:change"

// ChangeHandler receives the writer's origin tag, the key and the new value
// of a cache write. A nil value signals removal.
type ChangeHandler func(origin, key string, value []byte)

// Broadcaster is an explicit pub/sub channel for cache change events. It
// stands in for the browser's cross-tab storage event: observers filter out
// their own origin tag, so a writer never reacts to its own writes.
type Broadcaster struct {
	bus EventBus.Bus
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{bus: EventBus.New()}
}

// Publish notifies all subscribers of a changed key. Delivery is sequential
// per subscriber, so handlers never observe overlapping events.
func (b *Broadcaster) Publish(origin, key string, value []byte) {
	b.bus.Publish(changeTopic, origin, key, value)
}

// Subscribe registers a handler for all subsequent change events.
func (b *Broadcaster) Subscribe(handler ChangeHandler) error {
	return b.bus.Subscribe(changeTopic, func(origin, key string, value []byte) {
		handler(origin, key, value)
	})
}
