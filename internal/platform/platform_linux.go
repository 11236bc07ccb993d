//go:build linux

package platform

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/comalice/osalx/internal/primitives"
)

const (
	platformName         = "linux"
	platformLivePriority = true
)

// niceLevels maps each priority level to a nice value. Linux keeps nice per
// thread, so setpriority on a tid only touches that thread.
var niceLevels = map[primitives.Priority]int{
	primitives.Lowest:      19,
	primitives.BelowNormal: 5,
	primitives.Normal:      0,
	primitives.AboveNormal: -5,
	primitives.Highest:     -15,
}

func platformCurrentThreadID() int {
	return syscall.Gettid()
}

func platformApplyPriority(tid int, p primitives.Priority) (primitives.Priority, error) {
	if tid == 0 {
		return p, nil
	}
	return settlePriority(tid, p, syscall.Setpriority(syscall.PRIO_PROCESS, tid, niceLevels[p]))
}

// settlePriority turns the result of setpriority into the effective level.
// Without CAP_SYS_NICE the kernel refuses to lower nice; the level that
// remains in effect is returned together with the refusal.
func settlePriority(tid int, p primitives.Priority, setErr error) (primitives.Priority, error) {
	switch {
	case setErr == nil:
		return platformQueryPriority(tid)
	case errors.Is(setErr, syscall.EPERM), errors.Is(setErr, syscall.EACCES):
		eff, err := platformQueryPriority(tid)
		if err != nil {
			return primitives.Normal, err
		}
		return eff, &primitives.Error{
			Code:    primitives.CodeInvalidState,
			Op:      "platform.priority",
			Message: fmt.Sprintf("%v refused, %v remains in effect", p, eff),
			Err:     setErr,
		}
	default:
		return primitives.Normal, primitives.WrapError(primitives.CodeResourceExhausted, "platform.priority", setErr)
	}
}

func platformQueryPriority(tid int) (primitives.Priority, error) {
	if tid == 0 {
		return primitives.Normal, nil
	}
	// The raw syscall returns 20 - nice.
	raw, err := syscall.Getpriority(syscall.PRIO_PROCESS, tid)
	if err != nil {
		return primitives.Normal, primitives.WrapError(primitives.CodeInvalidState, "platform.priority", err)
	}
	return nearestLevel(20 - raw), nil
}

// nearestLevel maps a nice value to the closest declared level. Ties go to
// the lower priority.
func nearestLevel(nice int) primitives.Priority {
	best, bestDist := primitives.Normal, -1
	for _, p := range primitives.Priorities {
		d := niceLevels[p] - nice
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
