package syncprim

import (
	"context"
	"time"

	"github.com/gammazero/deque"
)

// waiter is one blocked caller. ready is closed when the resource has been
// handed to it, or with err set when the resource was retired instead.
type waiter struct {
	gid   int64
	ready chan struct{}
	err   error
}

func newWaiter(gid int64) *waiter {
	return &waiter{gid: gid, ready: make(chan struct{})}
}

func (w *waiter) granted() bool {
	select {
	case <-w.ready:
		return true
	default:
	}
	return false
}

// waitQueue is a FIFO of waiters. Callers hold the owning primitive's lock.
type waitQueue struct {
	q deque.Deque[*waiter]
}

func (wq *waitQueue) Len() int { return wq.q.Len() }

func (wq *waitQueue) push(w *waiter) { wq.q.PushBack(w) }

// pop removes and returns the oldest waiter, or nil.
func (wq *waitQueue) pop() *waiter {
	if wq.q.Len() == 0 {
		return nil
	}
	return wq.q.PopFront()
}

// fail wakes every queued waiter with err.
func (wq *waitQueue) fail(err error) {
	for wq.q.Len() > 0 {
		w := wq.q.PopFront()
		w.err = err
		close(w.ready)
	}
}

// remove drops w from the queue. Reports false if w was not queued.
func (wq *waitQueue) remove(w *waiter) bool {
	i := wq.q.Index(func(x *waiter) bool { return x == w })
	if i < 0 {
		return false
	}
	wq.q.Remove(i)
	return true
}

// contextFor returns a context bounded by timeout. A negative timeout means
// no bound.
func contextFor(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout < 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
