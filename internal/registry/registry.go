package registry

import (
	"sync"

	"github.com/example/saathigo/internal/models"
)

// Registry owns the set of active ride requests, keyed by connection
// identity. It is the single shared mutable resource in the matching core;
// all mutation goes through it under one mutex.
//
// Iteration order is insertion order. Overwriting an existing id replaces
// the value but keeps its original position, which the matcher relies on
// for stable tie-breaking.
type Registry struct {
	mu       sync.RWMutex
	requests map[string]models.RideRequest
	order    []string
}

func New() *Registry {
	return &Registry{requests: make(map[string]models.RideRequest)}
}

// Put inserts or replaces the request keyed by its ID. Resubmission with
// the same id is permitted and replaces timestamp and preferences.
func (r *Registry) Put(req models.RideRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		r.order = append(r.order, req.ID)
	}
	r.requests[req.ID] = req
}

// Get returns the request for id, if present.
func (r *Registry) Get(id string) (models.RideRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	return req, ok
}

// SetStatus updates the status of an existing request in place. Absent ids
// are a no-op returning false.
func (r *Registry) SetStatus(id string, status models.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return false
	}
	req.Status = status
	r.requests[id] = req
	return true
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return
	}
	delete(r.requests, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Snapshot returns a point-in-time copy of all current requests in
// insertion order, safe to iterate while the registry keeps mutating.
func (r *Registry) Snapshot() []models.RideRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RideRequest, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.requests[id])
	}
	return out
}

// Len returns the number of active requests.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.requests)
}
