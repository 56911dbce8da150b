// Package event provides a small topic-based publish/subscribe bridge
// used to forward window and loop notifications.
package event

import (
	"sync"
)

// Topics published or consumed by the scene controller.
const (
	TopicResize       = "resize"
	TopicSetupDone    = "setup.done"
	TopicLoopStarted  = "loop.started"
	TopicLoopStopped  = "loop.stopped"
	TopicLoopFault    = "loop.fault"
	TopicCommandAdded = "command.added"
	// TopicFrame carries the uint64 number of the frame just completed.
	TopicFrame = "loop.frame"
)

// Size is the payload of TopicResize.
type Size struct {
	Width  int
	Height int
}

// Handler receives the payload passed to Emit.
type Handler func(payload any)

// Subscription identifies a registered handler.
type Subscription struct {
	topic string
	id    uint64
}

type entry struct {
	id      uint64
	handler Handler
}

// Bridge dispatches payloads to the handlers subscribed to a topic.
// Handlers run synchronously, in subscription order, on the emitting
// goroutine. The zero value is ready to use.
type Bridge struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]entry
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{handlers: make(map[string][]entry)}
}

// Subscribe registers handler for topic.
func (b *Bridge) Subscribe(topic string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[string][]entry)
	}
	b.nextID++
	b.handlers[topic] = append(b.handlers[topic], entry{id: b.nextID, handler: handler})
	return Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes the handler registered under sub.
// Unknown subscriptions are ignored.
func (b *Bridge) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[sub.topic]
	for i, e := range list {
		if e.id == sub.id {
			// 复制而非原地修改，正在进行的 Emit 仍持有旧切片
			next := make([]entry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, sub.topic)
			} else {
				b.handlers[sub.topic] = next
			}
			return
		}
	}
}

// Emit calls every handler subscribed to topic with payload.
func (b *Bridge) Emit(topic string, payload any) {
	b.mu.Lock()
	list := b.handlers[topic]
	b.mu.Unlock()

	for _, e := range list {
		e.handler(payload)
	}
}

// Count returns the number of handlers subscribed to topic.
func (b *Bridge) Count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[topic])
}
