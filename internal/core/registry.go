// Package core defines the thread Table, the default Registry.
package core

import (
	"sort"
	"sync"
	"time"

	"github.com/comalice/osalx/internal/platform"
	"github.com/comalice/osalx/internal/primitives"
)

// Table is an in-memory Registry of threads, safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	threads map[primitives.ThreadID]*Thread
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{threads: make(map[primitives.ThreadID]*Thread)}
}

func (tb *Table) Register(t *Thread) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, exists := tb.threads[t.ID()]; exists {
		return primitives.NewError(primitives.CodeInvalidState, "table.register", "thread %v already registered", t.ID())
	}
	tb.threads[t.ID()] = t
	return nil
}

func (tb *Table) Unregister(id primitives.ThreadID) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.threads, id)
}

func (tb *Table) Lookup(id primitives.ThreadID) (*Thread, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	t, ok := tb.threads[id]
	return t, ok
}

func (tb *Table) List() []*Thread {
	tb.mu.RLock()
	list := make([]*Thread, 0, len(tb.threads))
	for _, t := range tb.threads {
		list = append(list, t)
	}
	tb.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	return list
}

// Len returns the number of registered threads.
func (tb *Table) Len() int {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return len(tb.threads)
}

// Snapshot captures every registered thread. Thread locks are taken one at
// a time, never nested.
func (tb *Table) Snapshot(name string) ProcessSnapshot {
	threads := tb.List()
	snap := ProcessSnapshot{
		Name:      name,
		Platform:  platform.Name(),
		Threads:   make([]ThreadSnapshot, 0, len(threads)),
		Timestamp: time.Now(),
	}
	for _, t := range threads {
		snap.Threads = append(snap.Threads, t.Snapshot())
	}
	return snap
}
