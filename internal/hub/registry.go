package hub

import "sync"

// Handler consumes one normalized event payload.
type Handler func(payload map[string]any)

// Registry maps (event, componentID) pairs to handlers so that
// multiple UI regions can subscribe to the same event independently
// without clobbering each other.
//
// Registration and removal are idempotent per pair: re-registering
// replaces the previous handler, removing an absent pair is a no-op.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler // event -> componentID -> handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]map[string]Handler{}}
}

// On registers handler for event under componentID, replacing any
// previous handler for the same pair.
func (r *Registry) On(event, componentID string, handler Handler) {
	if handler == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers[event] == nil {
		r.handlers[event] = map[string]Handler{}
	}
	r.handlers[event][componentID] = handler
}

// Off removes the handler registered for (event, componentID).
func (r *Registry) Off(event, componentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m := r.handlers[event]; m != nil {
		delete(m, componentID)
		if len(m) == 0 {
			delete(r.handlers, event)
		}
	}
}

// Dispatch invokes every handler registered for event. Handlers are
// copied out under the lock so one may call On/Off reentrantly.
func (r *Registry) Dispatch(event string, payload map[string]any) {
	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.handlers[event]))
	for _, h := range r.handlers[event] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

// Count reports the number of handlers registered for event.
func (r *Registry) Count(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[event])
}
