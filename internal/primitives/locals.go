package primitives

import "sync"

// Locals is per-thread key-value storage, safe for concurrent access so
// controllers can inspect a thread's values while it runs.
type Locals struct {
	data sync.Map
}

// NewLocals creates an empty store.
func NewLocals() *Locals {
	return &Locals{}
}

// Get retrieves a value by key.
func (l *Locals) Get(key string) (any, bool) {
	return l.data.Load(key)
}

// Set stores a value by key.
func (l *Locals) Set(key string, val any) {
	l.data.Store(key, val)
}

// Delete removes a key-value pair.
func (l *Locals) Delete(key string) {
	l.data.Delete(key)
}

// Snapshot returns a copy of the stored values.
func (l *Locals) Snapshot() map[string]any {
	snap := map[string]any{}
	l.data.Range(func(k, v any) bool {
		snap[k.(string)] = v
		return true
	})
	return snap
}

// Clear removes every value.
func (l *Locals) Clear() {
	l.data.Range(func(k, _ any) bool {
		l.data.Delete(k)
		return true
	})
}
