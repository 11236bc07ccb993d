package extensibility

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comalice/osalx/internal/core"
)

func start(t *testing.T, r core.Routine) *core.Thread {
	t.Helper()
	th, err := core.NewThread(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := th.Start(); err != nil {
		t.Fatal(err)
	}
	return th
}

func waitCount(t *testing.T, n *atomic.Int64, atLeast int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < atLeast {
		if time.Now().After(deadline) {
			t.Fatalf("count stuck at %d, want >= %d", n.Load(), atLeast)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoop_RunsUntilTerminated(t *testing.T) {
	var n atomic.Int64
	th := start(t, Loop(func(context.Context) error {
		n.Add(1)
		time.Sleep(100 * time.Microsecond)
		return nil
	}))
	waitCount(t, &n, 10)

	if err := th.SuspendWait(context.Background()); err != nil {
		t.Fatal(err)
	}
	frozen := n.Load()
	time.Sleep(20 * time.Millisecond)
	if n.Load() != frozen {
		t.Error("loop body ran while suspended")
	}
	th.Resume()
	waitCount(t, &n, frozen+1)

	th.Terminate()
	if err := th.Join(); err != nil {
		t.Errorf("Join = %v", err)
	}
}

func TestLoop_BodyErrorEndsRoutine(t *testing.T) {
	stop := errors.New("stop")
	var n atomic.Int64
	th := start(t, Loop(func(context.Context) error {
		if n.Add(1) == 3 {
			return stop
		}
		return nil
	}))
	if err := th.Join(); !errors.Is(err, stop) {
		t.Errorf("Join = %v, want %v", err, stop)
	}
	if n.Load() != 3 {
		t.Errorf("body ran %d times", n.Load())
	}
}

func TestEvery_TerminateInterruptsPause(t *testing.T) {
	var n atomic.Int64
	th := start(t, Every(time.Hour, func(context.Context) error {
		n.Add(1)
		return nil
	}))
	waitCount(t, &n, 1)

	th.Terminate()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := th.JoinContext(ctx); err != nil {
		t.Fatalf("JoinContext = %v", err)
	}
	if n.Load() != 1 {
		t.Errorf("body ran %d times during a one-hour pause", n.Load())
	}
}

func TestDrain(t *testing.T) {
	ch := make(chan int, 4)
	var sum atomic.Int64
	th := start(t, Drain(ch, func(v int) error {
		sum.Add(int64(v))
		return nil
	}))
	for i := 1; i <= 4; i++ {
		ch <- i
	}
	close(ch)
	if err := th.Join(); err != nil {
		t.Fatal(err)
	}
	if sum.Load() != 10 {
		t.Errorf("sum = %d, want 10", sum.Load())
	}
}

func TestDrain_TerminateWhileIdle(t *testing.T) {
	ch := make(chan string)
	th := start(t, Drain(ch, func(string) error { return nil }))
	th.Terminate()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := th.JoinContext(ctx); err != nil {
		t.Fatalf("JoinContext = %v", err)
	}
}
