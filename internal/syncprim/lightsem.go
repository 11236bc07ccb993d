package syncprim

import (
	"context"
	"time"

	"github.com/comalice/osalx/internal/primitives"
)

// LightSemaphore is a low-overhead wake-up signal.
//
// Signals beyond capacity saturate: they are dropped rather than reported,
// so redundant wake-ups never corrupt the count.
type LightSemaphore struct {
	ch chan struct{}
}

// NewLightSemaphore returns a semaphore holding at most capacity pending
// signals. Capacity 1 gives binary semantics.
func NewLightSemaphore(capacity int) (*LightSemaphore, error) {
	if capacity < 1 {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "lightsem.create", "capacity %d < 1", capacity)
	}
	return &LightSemaphore{ch: make(chan struct{}, capacity)}, nil
}

// Signal adds one pending signal. It reports false when the semaphore was
// already saturated.
func (l *LightSemaphore) Signal() bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Wait blocks until a signal is pending and consumes it.
func (l *LightSemaphore) Wait() {
	<-l.ch
}

// WaitContext is Wait bounded by ctx.
func (l *LightSemaphore) WaitContext(ctx context.Context) error {
	select {
	case <-l.ch:
		return nil
	case <-ctx.Done():
		return primitives.WrapError(primitives.CodeTimeout, "lightsem.wait", ctx.Err())
	}
}

// TryWait waits at most timeout. A zero timeout polls once.
func (l *LightSemaphore) TryWait(timeout time.Duration) error {
	if timeout <= 0 {
		select {
		case <-l.ch:
			return nil
		default:
			return primitives.NewError(primitives.CodeTimeout, "lightsem.try_wait", "no signal pending")
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-l.ch:
		return nil
	case <-t.C:
		return primitives.NewError(primitives.CodeTimeout, "lightsem.try_wait", "no signal within %v", timeout)
	}
}

// Pending returns the number of unconsumed signals.
func (l *LightSemaphore) Pending() int {
	return len(l.ch)
}

// Capacity returns the saturation limit.
func (l *LightSemaphore) Capacity() int {
	return cap(l.ch)
}
