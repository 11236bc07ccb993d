// Package osalx is a portable OS abstraction layer: threads with a
// cooperative suspend/resume/terminate lifecycle, a non-recursive Mutex,
// counting and lightweight semaphores, and process-wide diagnostic streams.
//
// The platform binding (native thread ids, priority mapping) is selected at
// build time; everything in this package behaves the same on every target,
// up to the documented platform equivalents of priority levels.
//
// # Example Usage
//
//	th, err := osalx.NewThreadBuilder(func(t *osalx.Thread, _ any) error {
//		for t.Checkpoint() {
//			work()
//		}
//		return nil
//	}).Name("worker").Priority(osalx.BelowNormal).Spawn()
//	...
//	th.Suspend()
//	th.Resume()
//	th.Terminate()
//	err = th.Join()
package osalx

import (
	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/platform"
	"github.com/comalice/osalx/internal/primitives"
	"github.com/comalice/osalx/internal/syncprim"
)

type (
	Thread          = core.Thread
	Routine         = core.Routine
	Option          = core.Option
	Publisher       = core.Publisher
	Persister       = core.Persister
	Visualizer      = core.Visualizer
	Registry        = core.Registry
	Table           = core.Table
	ThreadSnapshot  = core.ThreadSnapshot
	ProcessSnapshot = core.ProcessSnapshot

	State           = primitives.State
	Priority        = primitives.Priority
	ThreadID        = primitives.ThreadID
	ThreadConfig    = primitives.ThreadConfig
	Profile         = primitives.Profile
	TransitionEvent = primitives.TransitionEvent
	Error           = primitives.Error
	ErrorCode       = primitives.ErrorCode

	Mutex          = syncprim.Mutex
	Semaphore      = syncprim.Semaphore
	LightSemaphore = syncprim.LightSemaphore
)

const (
	Initialized = primitives.Initialized
	Running     = primitives.Running
	Suspended   = primitives.Suspended
	Terminating = primitives.Terminating
	Terminated  = primitives.Terminated
)

const (
	Lowest      = primitives.Lowest
	BelowNormal = primitives.BelowNormal
	Normal      = primitives.Normal
	AboveNormal = primitives.AboveNormal
	Highest     = primitives.Highest
)

const (
	CodeInvalidArgument   = primitives.CodeInvalidArgument
	CodeInvalidState      = primitives.CodeInvalidState
	CodeResourceExhausted = primitives.CodeResourceExhausted
	CodeBusy              = primitives.CodeBusy
	CodeNotOwner          = primitives.CodeNotOwner
	CodeOverflow          = primitives.CodeOverflow
	CodeTimeout           = primitives.CodeTimeout
)

// Sentinels for errors.Is; any *Error with the same code matches.
var (
	ErrInvalidArgument   = primitives.ErrInvalidArgument
	ErrInvalidState      = primitives.ErrInvalidState
	ErrResourceExhausted = primitives.ErrResourceExhausted
	ErrBusy              = primitives.ErrBusy
	ErrNotOwner          = primitives.ErrNotOwner
	ErrOverflow          = primitives.ErrOverflow
	ErrTimeout           = primitives.ErrTimeout
)

// Unbounded is the maximum count of a semaphore with no ceiling.
const Unbounded = syncprim.Unbounded

const (
	MinStackSize     = platform.MinStackSize
	DefaultStackSize = platform.DefaultStackSize
)

// Thread options.
var (
	WithName       = core.WithName
	WithArg        = core.WithArg
	WithPriority   = core.WithPriority
	WithStackSize  = core.WithStackSize
	WithConfig     = core.WithConfig
	WithContext    = core.WithContext
	WithPublisher  = core.WithPublisher
	WithRegistry   = core.WithRegistry
	WithVisualizer = core.WithVisualizer
	WithLogger     = core.WithLogger
)

// NewThread creates a thread in the Initialized state.
func NewThread(routine Routine, opts ...Option) (*Thread, error) {
	return core.NewThread(routine, opts...)
}

// NewMutex creates an unlocked mutex.
func NewMutex() *Mutex {
	return syncprim.NewMutex()
}

// NewSemaphore creates a counting semaphore; max may be Unbounded.
func NewSemaphore(initial, max int) (*Semaphore, error) {
	return syncprim.NewSemaphore(initial, max)
}

// NewLightSemaphore creates a lightweight semaphore holding at most
// capacity pending signals.
func NewLightSemaphore(capacity int) (*LightSemaphore, error) {
	return syncprim.NewLightSemaphore(capacity)
}

// NewTable creates an empty thread registry.
func NewTable() *Table {
	return core.NewTable()
}

// ParsePriority parses a priority name such as "below-normal".
func ParsePriority(s string) (Priority, error) {
	return primitives.ParsePriority(s)
}

// Platform names the platform binding compiled in, e.g. "linux".
func Platform() string {
	return platform.Name()
}

// LivePriority reports whether started threads may change priority.
func LivePriority() bool {
	return platform.LivePriority()
}
