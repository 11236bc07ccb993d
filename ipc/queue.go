package ipc

import (
	"context"
	"errors"

	"github.com/gammazero/deque"

	"github.com/comalice/osalx/internal/primitives"
	"github.com/comalice/osalx/internal/syncprim"
)

// Queue is a bounded FIFO of byte messages.
//
// Two counting semaphores track free slots and queued messages; a Mutex
// guards the message deque. Senders block while the queue is full and
// receivers while it is empty, each served in arrival order.
type Queue struct {
	mu    *syncprim.Mutex
	items deque.Deque[[]byte]

	slots *syncprim.Semaphore
	avail *syncprim.Semaphore

	closed context.Context
	close  context.CancelFunc
}

// NewQueue creates a queue holding at most capacity messages.
func NewQueue(capacity int) (*Queue, error) {
	if capacity < 1 {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "queue.create", "capacity %d < 1", capacity)
	}
	slots, err := syncprim.NewSemaphore(capacity, capacity)
	if err != nil {
		return nil, err
	}
	avail, err := syncprim.NewSemaphore(0, capacity)
	if err != nil {
		return nil, err
	}
	closed, cancel := context.WithCancel(context.Background())
	return &Queue{
		mu:     syncprim.NewMutex(),
		slots:  slots,
		avail:  avail,
		closed: closed,
		close:  cancel,
	}, nil
}

// Send appends msg, blocking while the queue is full. The queue keeps msg;
// callers must not modify it afterwards.
func (q *Queue) Send(ctx context.Context, msg []byte) error {
	if err := q.await(ctx, q.slots, "queue.send"); err != nil {
		return err
	}
	return q.push(msg)
}

// TrySend appends msg without blocking. A full queue is Overflow.
func (q *Queue) TrySend(msg []byte) error {
	if q.closed.Err() != nil {
		return q.errClosed("queue.send")
	}
	if err := q.slots.TryWait(0); err != nil {
		return primitives.NewError(primitives.CodeOverflow, "queue.send", "queue full")
	}
	return q.push(msg)
}

// Receive removes the oldest message, blocking while the queue is empty.
func (q *Queue) Receive(ctx context.Context) ([]byte, error) {
	if err := q.await(ctx, q.avail, "queue.receive"); err != nil {
		return nil, err
	}
	return q.pop()
}

// TryReceive removes the oldest message without blocking. An empty queue is
// Timeout.
func (q *Queue) TryReceive() ([]byte, error) {
	if q.closed.Err() != nil {
		return nil, q.errClosed("queue.receive")
	}
	if err := q.avail.TryWait(0); err != nil {
		return nil, err
	}
	return q.pop()
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	if q.mu.Acquire() != nil {
		return 0
	}
	defer q.mu.Release()
	return q.items.Len()
}

// Cap returns the queue's capacity.
func (q *Queue) Cap() int {
	return q.slots.Max()
}

// Close discards queued messages and fails pending and later operations
// with InvalidState. Closing twice is a no-op.
func (q *Queue) Close() error {
	if err := q.mu.Acquire(); err != nil {
		return nil
	}
	q.close()
	q.items.Clear()
	return q.mu.Release()
}

func (q *Queue) errClosed(op string) error {
	return primitives.NewError(primitives.CodeInvalidState, op, "queue closed")
}

// await takes a unit from sem, giving up when ctx ends or the queue closes.
func (q *Queue) await(ctx context.Context, sem *syncprim.Semaphore, op string) error {
	if q.closed.Err() != nil {
		return q.errClosed(op)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(q.closed, cancel)
	defer stop()

	err := sem.WaitContext(ctx)
	if q.closed.Err() != nil {
		return q.errClosed(op)
	}
	if errors.Is(err, primitives.ErrTimeout) {
		return primitives.WrapError(primitives.CodeTimeout, op, err)
	}
	return err
}

func (q *Queue) push(msg []byte) error {
	if err := q.mu.Acquire(); err != nil {
		return err
	}
	if q.closed.Err() != nil {
		q.mu.Release()
		return q.errClosed("queue.send")
	}
	q.items.PushBack(msg)
	q.mu.Release()
	return q.avail.Signal()
}

func (q *Queue) pop() ([]byte, error) {
	if err := q.mu.Acquire(); err != nil {
		return nil, err
	}
	if q.closed.Err() != nil {
		q.mu.Release()
		return nil, q.errClosed("queue.receive")
	}
	msg := q.items.PopFront()
	q.mu.Release()
	return msg, q.slots.Signal()
}
