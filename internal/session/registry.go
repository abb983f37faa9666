package session

import (
	"sync"

	"github.com/sebas/callview/internal/telecom"
)

// Registry is the set of call handles the platform has told us about, in
// registration order. A handle enters on an add event and leaves on a
// remove event; nothing else changes membership.
type Registry struct {
	mu    sync.RWMutex
	calls map[string]*telecom.Call
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{calls: make(map[string]*telecom.Call)}
}

// Add registers a handle. Re-adding a known id is ignored.
func (r *Registry) Add(call *telecom.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.calls[call.ID]; exists {
		return
	}
	r.calls[call.ID] = call
	r.order = append(r.order, call.ID)
}

// Remove drops a handle, reporting whether it was present
func (r *Registry) Remove(callID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.calls[callID]; !exists {
		return false
	}
	delete(r.calls, callID)
	for i, id := range r.order {
		if id == callID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get retrieves a handle by id
func (r *Registry) Get(callID string) (*telecom.Call, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calls[callID]
	return c, ok
}

// List returns the handles in registration order
func (r *Registry) List() []*telecom.Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*telecom.Call, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.calls[id])
	}
	return out
}

// ByID returns a snapshot map of id to handle
func (r *Registry) ByID() map[string]*telecom.Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*telecom.Call, len(r.calls))
	for id, c := range r.calls {
		out[id] = c
	}
	return out
}

// Count returns the number of registered handles
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calls)
}
