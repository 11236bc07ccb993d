package syncprim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/comalice/osalx/internal/primitives"
)

// Unbounded is the maximum count of a semaphore with no ceiling.
const Unbounded = math.MaxInt

// Semaphore is a counting semaphore with an optional maximum count.
//
// Signal hands a unit directly to the oldest blocked waiter when there is
// one, so the count is only incremented when nobody is waiting. A signal
// that happens before a blocked Wait releases exactly that one waiter.
type Semaphore struct {
	mu      sync.Mutex
	count   int
	max     int
	waiters waitQueue
}

// NewSemaphore creates a semaphore holding initial units and never more than
// max. Use Unbounded for no ceiling.
func NewSemaphore(initial, max int) (*Semaphore, error) {
	if initial < 0 || max < 0 {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "semaphore.create",
			"negative count (initial=%d, max=%d)", initial, max)
	}
	if initial > max {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "semaphore.create",
			"initial count %d exceeds maximum %d", initial, max)
	}
	return &Semaphore{count: initial, max: max}, nil
}

// Wait blocks until a unit is available and takes it.
func (s *Semaphore) Wait() error {
	return s.wait(context.Background(), "semaphore.wait")
}

// WaitContext is Wait bounded by ctx.
func (s *Semaphore) WaitContext(ctx context.Context) error {
	return s.wait(ctx, "semaphore.wait")
}

// TryWait waits at most timeout for a unit. A zero timeout polls once.
func (s *Semaphore) TryWait(timeout time.Duration) error {
	if timeout <= 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.count == 0 {
			return primitives.NewError(primitives.CodeTimeout, "semaphore.try_wait", "no units available")
		}
		s.count--
		return nil
	}
	ctx, cancel := contextFor(timeout)
	defer cancel()
	return s.wait(ctx, "semaphore.try_wait")
}

func (s *Semaphore) wait(ctx context.Context, op string) error {
	s.mu.Lock()
	if s.count > 0 {
		s.count--
		s.mu.Unlock()
		return nil
	}
	w := newWaiter(0)
	s.waiters.push(w)
	s.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w.granted() {
		return nil
	}
	s.waiters.remove(w)
	return primitives.WrapError(primitives.CodeTimeout, op, ctx.Err())
}

// Signal releases one unit. It wakes at most one waiter and fails with
// Overflow when the count is already at its maximum.
func (s *Semaphore) Signal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w := s.waiters.pop(); w != nil {
		close(w.ready)
		return nil
	}
	if s.count >= s.max {
		return primitives.NewError(primitives.CodeOverflow, "semaphore.signal", "count already at maximum %d", s.max)
	}
	s.count++
	return nil
}

// Count returns the number of available units.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Max returns the maximum count.
func (s *Semaphore) Max() int {
	return s.max
}

// Waiters returns the number of blocked waiters.
func (s *Semaphore) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.Len()
}
