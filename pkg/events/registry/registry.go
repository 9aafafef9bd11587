package registry

import (
	"reflect"
	"slices"
	"sync"
)

// Registry maps payload types to values, remembering the order in which
// keys were first registered.
type Registry[V any] struct {
	mu      sync.RWMutex
	entries map[reflect.Type]V
	order   []reflect.Type
}

// New creates an empty registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{
		entries: make(map[reflect.Type]V),
	}
}

// Get returns the value for key and whether it exists.
func (r *Registry[V]) Get(key reflect.Type) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// GetOrCreate returns the value for key, creating it with factory on first
// use. factory runs at most once per key, even under concurrent access.
// created reports whether this call stored the value.
func (r *Registry[V]) GetOrCreate(key reflect.Type, factory func() V) (v V, created bool) {
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.entries[key]; ok {
		return v, false
	}
	v = factory()
	r.entries[key] = v
	r.order = append(r.order, key)
	return v, true
}

// Keys returns the keys in first-registration order.
func (r *Registry[V]) Keys() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Range calls fn for each entry in first-registration order until fn
// returns false. It iterates over a snapshot, so fn may register keys or
// clear the registry.
func (r *Registry[V]) Range(fn func(key reflect.Type, value V) bool) {
	r.mu.RLock()
	keys := slices.Clone(r.order)
	values := make([]V, len(keys))
	for i, k := range keys {
		values[i] = r.entries[k]
	}
	r.mu.RUnlock()

	for i, k := range keys {
		if !fn(k, values[i]) {
			return
		}
	}
}

// Clear removes every entry and returns the removed values in
// first-registration order.
func (r *Registry[V]) Clear() []V {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]V, 0, len(r.order))
	for _, k := range r.order {
		removed = append(removed, r.entries[k])
	}
	r.entries = make(map[reflect.Type]V)
	r.order = nil
	return removed
}
