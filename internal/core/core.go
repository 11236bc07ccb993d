// Package core provides the thread runtime: the Thread lifecycle state
// machine, its functional options, the thread Table and the pluggable
// interfaces (publishing, persistence, visualisation) wired into it.
// Dependencies: internal/primitives, internal/syncprim, internal/platform, internal/diag.
//go:generate go test ./... -race

package core

import (
	"context"

	"github.com/comalice/osalx/internal/primitives"
)

// Publisher receives every lifecycle transition of the threads it is attached to.
type Publisher interface {
	Publish(ctx context.Context, event primitives.TransitionEvent) error
	Close() error
}

// Persister stores and restores process snapshots.
type Persister interface {
	Save(ctx context.Context, snapshot ProcessSnapshot) error
	Load(ctx context.Context, name string) (ProcessSnapshot, error)
}

// Visualizer renders the lifecycle graph with the current state highlighted.
type Visualizer interface {
	ExportDOT(current primitives.State) string
}

// Registry tracks live Thread objects.
type Registry interface {
	// Register adds t. Registering the same thread twice fails with InvalidState.
	Register(t *Thread) error
	// Unregister removes the thread with the given id, if present.
	Unregister(id primitives.ThreadID)
	// Lookup returns the registered thread with the given id.
	Lookup(id primitives.ThreadID) (*Thread, bool)
	// List returns registered threads ordered by id.
	List() []*Thread
}
