//go:build !linux

package platform

import "github.com/comalice/osalx/internal/primitives"

// Without a per-thread priority call the requested level is recorded only
// and must be fixed before the thread starts.
const (
	platformName         = "generic"
	platformLivePriority = false
)

func platformCurrentThreadID() int {
	return 0
}

func platformApplyPriority(_ int, p primitives.Priority) (primitives.Priority, error) {
	return p, nil
}

func platformQueryPriority(_ int) (primitives.Priority, error) {
	return primitives.Normal, primitives.NewError(primitives.CodeInvalidState, "platform.priority", "no native priority query on %s", platformName)
}
