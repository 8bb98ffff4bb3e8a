package tracker

import (
	"fmt"
	"sort"
	"sync"
)

// Registry names trackers for inspection. It holds the trackers registered in
// it; dropping the registry releases them.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Tracker
	names  map[ID]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Tracker),
		names:  make(map[ID]string),
	}
}

// Register records t under name. Names are unique; a tracker has one name.
func (r *Registry) Register(name string, t Tracker) error {
	if t == nil {
		return fmt.Errorf("register %q: nil tracker", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byName[name]; ok && prev != t {
		return fmt.Errorf("register %q: name taken by tracker#%d", name, prev.ID())
	}
	if prev, ok := r.names[t.ID()]; ok && prev != name {
		return fmt.Errorf("register %q: tracker#%d already registered as %q", name, t.ID(), prev)
	}
	r.byName[name] = t
	r.names[t.ID()] = name
	return nil
}

// Lookup returns the tracker registered under name.
func (r *Registry) Lookup(name string) (Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Name returns the name of t, or "" if it is not registered.
func (r *Registry) Name(t Tracker) string {
	if r == nil || t == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[t.ID()]
}

// Names returns all registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
