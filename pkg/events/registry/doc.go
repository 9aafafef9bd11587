// Package registry provides a thread-safe, insertion-ordered map keyed by
// reflect.Type.
//
// The event bus keeps one entry per payload type or capability interface.
// Entries are created lazily with GetOrCreate, which calls its factory at
// most once per key even under concurrent access:
//
//	entries := registry.New[*entry]()
//	e, created := entries.GetOrCreate(reflect.TypeFor[OrderPlaced](), newEntry)
//
// Range visits entries in first-registration order over a snapshot, so the
// callback may register new keys without affecting the iteration in progress.
package registry
