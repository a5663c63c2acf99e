package session

import "sync"

// Registry maps container IDs to VNC ports.
//
// A single mutex guards the whole map; operations never span I/O, so a
// coarse lock is enough and a blocked docker call can never stall a
// bridge lookup.
type Registry struct {
	mu    sync.RWMutex
	ports map[string]int // Protected by mu
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ports: make(map[string]int),
	}
}

// Upsert inserts or replaces the entry for id.
func (r *Registry) Upsert(id string, vncPort int) {
	r.mu.Lock()
	r.ports[id] = vncPort
	r.mu.Unlock()
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.ports, id)
	r.mu.Unlock()
}

// Lookup returns the VNC port registered for id.
func (r *Registry) Lookup(id string) (int, bool) {
	r.mu.RLock()
	port, ok := r.ports[id]
	r.mu.RUnlock()
	return port, ok
}

// ReplaceAll atomically discards the current contents and installs entries.
// Concurrent readers observe either the old set or the new one, never a mix.
func (r *Registry) ReplaceAll(entries map[string]int) {
	next := make(map[string]int, len(entries))
	for id, port := range entries {
		next[id] = port
	}
	r.mu.Lock()
	r.ports = next
	r.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the registry contents.
func (r *Registry) Snapshot() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.ports))
	for id, port := range r.ports {
		out[id] = port
	}
	return out
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ports)
}

// HasPort reports whether any session is registered on the given port.
// Used by the launch flow's port-scan fallback to avoid claiming a port
// that already belongs to a tracked session.
func (r *Registry) HasPort(port int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.ports {
		if p == port {
			return true
		}
	}
	return false
}
