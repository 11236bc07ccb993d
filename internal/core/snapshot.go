package core

import (
	"time"

	"github.com/comalice/osalx/internal/primitives"
)

// ThreadSnapshot is the serialisable snapshot of one thread.
type ThreadSnapshot struct {
	ID                primitives.ThreadID `json:"id" yaml:"id"`
	Name              string              `json:"name" yaml:"name"`
	State             primitives.State    `json:"state" yaml:"state"`
	Priority          primitives.Priority `json:"priority" yaml:"priority"`
	EffectivePriority primitives.Priority `json:"effectivePriority" yaml:"effectivePriority"`
	StackSize         int                 `json:"stackSize" yaml:"stackSize"`
	NativeID          int                 `json:"nativeID,omitempty" yaml:"nativeID,omitempty"`
	CreatedAt         time.Time           `json:"createdAt" yaml:"createdAt"`
	StartedAt         time.Time           `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	ExitedAt          time.Time           `json:"exitedAt,omitempty" yaml:"exitedAt,omitempty"`
	Error             string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// ProcessSnapshot is a named, timestamped set of thread snapshots.
type ProcessSnapshot struct {
	Name      string           `json:"name" yaml:"name"`
	Platform  string           `json:"platform" yaml:"platform"`
	Threads   []ThreadSnapshot `json:"threads" yaml:"threads"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
}

// Find returns the snapshot of the named thread.
func (p ProcessSnapshot) Find(name string) (ThreadSnapshot, bool) {
	for _, s := range p.Threads {
		if s.Name == name {
			return s, true
		}
	}
	return ThreadSnapshot{}, false
}

// CountIn returns how many threads are in state s.
func (p ProcessSnapshot) CountIn(s primitives.State) int {
	n := 0
	for _, t := range p.Threads {
		if t.State == s {
			n++
		}
	}
	return n
}
