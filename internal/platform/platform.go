// Package platform binds the abstract thread attributes to the native
// facilities of the target operating system.
//
// The binding is chosen at build time by file name and build constraints
// (platform_linux.go, platform_other.go); nothing here branches on the OS at
// run time. Every entry point below delegates to a platformXxx function that
// exactly one of those files provides.
package platform

import (
	"errors"
	"os"

	"github.com/comalice/osalx/internal/primitives"
)

// MinStackSize is the smallest stack size a thread may request. Goroutine
// stacks grow on demand, so the value is advisory on every platform.
const MinStackSize = 64 << 10

// DefaultStackSize is used when no size was requested.
const DefaultStackSize = 256 << 10

// Name identifies the active binding, e.g. "linux".
func Name() string {
	return platformName
}

// LivePriority reports whether priority may be changed after a thread's
// native context exists.
func LivePriority() bool {
	return platformLivePriority
}

// CurrentThreadID returns the native id of the calling OS thread, or 0 when
// the platform exposes none. Callers must have locked the goroutine to its
// OS thread for the value to stay meaningful.
func CurrentThreadID() int {
	return platformCurrentThreadID()
}

// ApplyPriority applies p to the native thread tid and returns the priority
// the platform actually put in effect (the nearest supported level). When the
// OS refuses the change for lack of privilege, the level still in effect is
// returned with an InvalidState error for which Refused reports true.
func ApplyPriority(tid int, p primitives.Priority) (primitives.Priority, error) {
	if !p.Valid() {
		return primitives.Normal, primitives.NewError(primitives.CodeInvalidArgument, "platform.priority", "invalid priority %d", int8(p))
	}
	return platformApplyPriority(tid, p)
}

// Refused reports whether err is a priority change the OS declined for lack
// of privilege.
func Refused(err error) bool {
	return errors.Is(err, primitives.ErrInvalidState) && errors.Is(err, os.ErrPermission)
}

// QueryPriority returns the effective priority of native thread tid.
func QueryPriority(tid int) (primitives.Priority, error) {
	return platformQueryPriority(tid)
}

// ClampStackSize maps a requested size to the size the platform will honour.
// Zero selects DefaultStackSize.
func ClampStackSize(n int) int {
	switch {
	case n == 0:
		return DefaultStackSize
	case n < MinStackSize:
		return MinStackSize
	default:
		return n
	}
}
