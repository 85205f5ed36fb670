// Package events carries the application's readiness and auth signals
// between otherwise independent flows.
package events

import "sync"

// Event names understood across the client.
const (
	AppInitialized = "app:initialized"
	AppPageReady   = "app:pageReady"
	AuthUpdated    = "auth:updated"
)

// Handler receives the payload attached to an emitted event.
type Handler func(payload any)

// Bus is a minimal synchronous publish/subscribe hub. Handlers run on the
// emitting goroutine, in subscription order.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers h for every future emission of name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Emit delivers payload to every handler subscribed to name.
func (b *Bus) Emit(name string, payload any) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	b.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}
