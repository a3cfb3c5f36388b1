package notify

import "sync"

// Registry hands out one Center per user, creating it on first use.
type Registry struct {
	mu      sync.Mutex
	centers map[string]*Center
}

func NewRegistry() *Registry {
	return &Registry{centers: make(map[string]*Center)}
}

// Center returns the center for the given user id, creating it if needed.
func (r *Registry) Center(userID string) *Center {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.centers[userID]
	if !ok {
		c = NewCenter()
		r.centers[userID] = c
	}
	return c
}

// Drop discards a user's center, e.g. when their last connection closes.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.centers, userID)
}
