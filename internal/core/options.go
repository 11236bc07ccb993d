// Package core provides the thread runtime.
// Options for configuring Thread instances.
package core

import (
	"context"
	"log/slog"

	"github.com/comalice/osalx/internal/primitives"
)

// Option applies configuration to a Thread via the functional options pattern.
type Option func(*Thread)

// WithName sets the thread's name. Defaults to "thread-<id>".
func WithName(name string) Option {
	return func(t *Thread) {
		t.name = name
	}
}

// WithArg sets the opaque argument passed to the routine. The thread never
// takes ownership of it.
func WithArg(arg any) Option {
	return func(t *Thread) {
		t.arg = arg
	}
}

// WithPriority sets the requested priority applied at Start.
func WithPriority(p primitives.Priority) Option {
	return func(t *Thread) {
		t.priority = p
	}
}

// WithStackSize sets the requested stack size in bytes.
func WithStackSize(bytes int) Option {
	return func(t *Thread) {
		t.stackSize = bytes
	}
}

// WithConfig applies a declarative thread configuration.
func WithConfig(cfg primitives.ThreadConfig) Option {
	return func(t *Thread) {
		t.name = cfg.Name
		t.priority = cfg.Priority
		t.stackSize = cfg.StackSize
	}
}

// WithContext sets the parent of the thread's Context.
func WithContext(ctx context.Context) Option {
	return func(t *Thread) {
		if ctx != nil {
			t.parent = ctx
		}
	}
}

// WithPublisher configures the Thread with a Publisher for its transitions.
func WithPublisher(p Publisher) Option {
	return func(t *Thread) {
		t.publisher = p
	}
}

// WithRegistry registers the Thread in r on creation; Close unregisters it.
func WithRegistry(r Registry) Option {
	return func(t *Thread) {
		t.registry = r
	}
}

// WithVisualizer configures the Thread with a Visualizer.
func WithVisualizer(v Visualizer) Option {
	return func(t *Thread) {
		t.visualizer = v
	}
}

// WithLogger replaces the process-wide diagnostic logger for this thread.
func WithLogger(l *slog.Logger) Option {
	return func(t *Thread) {
		t.logger = l
	}
}
