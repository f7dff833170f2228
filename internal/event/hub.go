package event

import "sync"

// Handler receives a published event. The concrete type depends on the
// topic; handlers type-assert to the topic's event struct.
type Handler func(ev any)

// Subscription is an active handler registration.
type Subscription struct {
	id    uint64
	topic Topic
	hub   *Hub
}

// Unsubscribe removes this subscription. Unsubscribing more than once is
// a no-op.
func (s *Subscription) Unsubscribe() {
	if s.hub != nil {
		s.hub.unsubscribe(s.topic, s.id)
		s.hub = nil
	}
}

// Hub routes boundary events from the host to engine handlers. Delivery
// is synchronous on the publisher's goroutine, preserving the engine's
// run-to-completion model.
type Hub struct {
	mu       sync.RWMutex
	handlers map[Topic]map[uint64]Handler
	nextID   uint64
}

// NewHub creates an event hub.
func NewHub() *Hub {
	return &Hub{handlers: make(map[Topic]map[uint64]Handler)}
}

// Subscribe registers a handler for a topic.
func (h *Hub) Subscribe(topic Topic, handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	if h.handlers[topic] == nil {
		h.handlers[topic] = make(map[uint64]Handler)
	}
	h.handlers[topic][id] = handler

	return &Subscription{id: id, topic: topic, hub: h}
}

// Publish delivers an event to every handler subscribed to the topic.
func (h *Hub) Publish(topic Topic, ev any) {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.handlers[topic]))
	for _, handler := range h.handlers[topic] {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	// Handlers run outside the lock so they may subscribe or unsubscribe.
	for _, handler := range handlers {
		handler(ev)
	}
}

// HandlerCount returns the number of handlers subscribed to a topic.
func (h *Hub) HandlerCount(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[topic])
}

func (h *Hub) unsubscribe(topic Topic, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if handlers, ok := h.handlers[topic]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(h.handlers, topic)
		}
	}
}
