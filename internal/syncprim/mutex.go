package syncprim

import (
	"context"
	"sync"
	"time"

	"github.com/comalice/osalx/internal/primitives"
)

// Mutex is a non-recursive mutual-exclusion lock that tracks its owner.
//
// Ownership is the goroutine that acquired it. Policy:
//   - re-acquisition by the owner fails with InvalidState instead of deadlocking
//   - release by any other goroutine fails with NotOwner
//   - waiters are served FIFO; release hands ownership straight to the oldest
//   - Destroy on a held mutex fails with Busy; every later call fails with InvalidState
//   - Retire lets the owner destroy it; queued waiters fail with InvalidState
//
// The zero value is an unlocked mutex ready for use. A Mutex must not be
// copied after first use.
type Mutex struct {
	mu        sync.Mutex
	held      bool
	owner     int64
	destroyed bool
	waiters   waitQueue
}

// NewMutex returns an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Acquire blocks until the calling goroutine owns m.
func (m *Mutex) Acquire() error {
	return m.acquire(context.Background(), "mutex.acquire")
}

// AcquireContext is Acquire bounded by ctx. When ctx ends first it returns a
// Timeout error wrapping ctx.Err().
func (m *Mutex) AcquireContext(ctx context.Context) error {
	return m.acquire(ctx, "mutex.acquire")
}

// TryAcquire waits at most timeout for ownership. A zero timeout polls once.
func (m *Mutex) TryAcquire(timeout time.Duration) error {
	if timeout <= 0 {
		gid := primitives.GoroutineID()
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.checkAcquire(gid, "mutex.try_acquire"); err != nil {
			return err
		}
		if m.held {
			return primitives.NewError(primitives.CodeTimeout, "mutex.try_acquire", "mutex is held")
		}
		m.held, m.owner = true, gid
		return nil
	}
	ctx, cancel := contextFor(timeout)
	defer cancel()
	return m.acquire(ctx, "mutex.try_acquire")
}

func (m *Mutex) checkAcquire(gid int64, op string) error {
	if m.destroyed {
		return primitives.NewError(primitives.CodeInvalidState, op, "mutex destroyed")
	}
	if m.held && m.owner == gid {
		return primitives.NewError(primitives.CodeInvalidState, op, "recursive acquisition by goroutine %d", gid)
	}
	return nil
}

func (m *Mutex) acquire(ctx context.Context, op string) error {
	gid := primitives.GoroutineID()

	m.mu.Lock()
	if err := m.checkAcquire(gid, op); err != nil {
		m.mu.Unlock()
		return err
	}
	if !m.held {
		m.held, m.owner = true, gid
		m.mu.Unlock()
		return nil
	}
	w := newWaiter(gid)
	m.waiters.push(w)
	m.mu.Unlock()

	select {
	case <-w.ready:
		return w.err
	case <-ctx.Done():
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Release or Retire may have woken w between ctx firing and relocking.
	if w.granted() {
		return w.err
	}
	m.waiters.remove(w)
	return primitives.WrapError(primitives.CodeTimeout, op, ctx.Err())
}

// Release gives up ownership. If goroutines are waiting, the oldest becomes
// the owner before Release returns.
func (m *Mutex) Release() error {
	gid := primitives.GoroutineID()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return primitives.NewError(primitives.CodeInvalidState, "mutex.release", "mutex destroyed")
	}
	if !m.held || m.owner != gid {
		return primitives.NewError(primitives.CodeNotOwner, "mutex.release", "goroutine %d does not hold the mutex", gid)
	}
	if w := m.waiters.pop(); w != nil {
		m.owner = w.gid
		close(w.ready)
		return nil
	}
	m.held, m.owner = false, 0
	return nil
}

// Destroy retires m. It fails with Busy while the mutex is held.
// Destroying an already destroyed mutex is a no-op.
func (m *Mutex) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return primitives.NewError(primitives.CodeBusy, "mutex.destroy", "held by goroutine %d", m.owner)
	}
	m.destroyed = true
	return nil
}

// Retire destroys m on behalf of its owner, who gives up ownership in the
// same step. Goroutines queued in Acquire fail with InvalidState.
func (m *Mutex) Retire() error {
	gid := primitives.GoroutineID()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return primitives.NewError(primitives.CodeInvalidState, "mutex.retire", "mutex destroyed")
	}
	if !m.held || m.owner != gid {
		return primitives.NewError(primitives.CodeNotOwner, "mutex.retire", "goroutine %d does not hold the mutex", gid)
	}
	m.held, m.owner, m.destroyed = false, 0, true
	m.waiters.fail(primitives.NewError(primitives.CodeInvalidState, "mutex.acquire", "mutex destroyed"))
	return nil
}

// Held reports whether some goroutine owns m.
func (m *Mutex) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// HeldByCaller reports whether the calling goroutine owns m.
func (m *Mutex) HeldByCaller() bool {
	gid := primitives.GoroutineID()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held && m.owner == gid
}

// Waiters returns the number of goroutines blocked in Acquire.
func (m *Mutex) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiters.Len()
}
