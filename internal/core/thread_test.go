package core

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comalice/osalx/internal/platform"
	"github.com/comalice/osalx/internal/primitives"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// looper increments counter at every checkpoint until terminated.
func looper(counter *atomic.Int64) Routine {
	return func(th *Thread, _ any) error {
		for th.Checkpoint() {
			counter.Add(1)
			time.Sleep(100 * time.Microsecond)
		}
		return nil
	}
}

func startLooper(t *testing.T, counter *atomic.Int64, opts ...Option) *Thread {
	t.Helper()
	th, err := NewThread(looper(counter), opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := th.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		th.Terminate()
		th.Join()
	})
	return th
}

func TestThread_RunToCompletion(t *testing.T) {
	var got any
	th, err := NewThread(func(_ *Thread, arg any) error {
		got = arg
		return nil
	}, WithArg("payload"), WithName("worker"))
	if err != nil {
		t.Fatal(err)
	}
	if th.State() != primitives.Initialized {
		t.Errorf("State() = %v before Start", th.State())
	}
	if th.Name() != "worker" {
		t.Errorf("Name() = %q", th.Name())
	}

	if err := th.Start(); err != nil {
		t.Fatal(err)
	}
	if err := th.Join(); err != nil {
		t.Fatal(err)
	}
	if got != "payload" {
		t.Errorf("routine saw arg %v", got)
	}
	if th.State() != primitives.Terminated {
		t.Errorf("State() = %v after Join", th.State())
	}
	if err := th.Start(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("second Start = %v, want InvalidState", err)
	}
}

func TestThread_RoutineErrorFromJoin(t *testing.T) {
	boom := errors.New("boom")
	th, _ := NewThread(func(*Thread, any) error { return boom })
	th.Start()
	if err := th.Join(); !errors.Is(err, boom) {
		t.Errorf("Join = %v, want %v", err, boom)
	}
	// Idempotent.
	if err := th.Join(); !errors.Is(err, boom) {
		t.Errorf("second Join = %v", err)
	}
}

func TestThread_PanicSurfacesFromJoin(t *testing.T) {
	th, _ := NewThread(func(*Thread, any) error { panic("bad routine") })
	th.Start()
	err := th.Join()
	if err == nil {
		t.Fatal("Join after panic returned nil")
	}
	if th.State() != primitives.Terminated {
		t.Errorf("State() = %v", th.State())
	}
	if s := th.Snapshot(); s.Error == "" {
		t.Error("snapshot lost the panic error")
	}
}

func TestThread_TerminateJoinBounded(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)
	waitFor(t, "first iteration", func() bool { return counter.Load() > 0 })

	if err := th.Terminate(); err != nil {
		t.Fatal(err)
	}
	if !th.TerminationRequested() {
		t.Error("TerminationRequested() = false")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := th.JoinContext(ctx); err != nil {
		t.Fatalf("JoinContext: %v", err)
	}
	if th.State() != primitives.Terminated {
		t.Errorf("State() = %v", th.State())
	}
	if err := th.Terminate(); err != nil {
		t.Errorf("Terminate after exit = %v, want nil", err)
	}
}

func TestThread_SuspendStopsProgress(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)
	waitFor(t, "progress", func() bool { return counter.Load() > 5 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := th.SuspendWait(ctx); err != nil {
		t.Fatalf("SuspendWait: %v", err)
	}
	if th.State() != primitives.Suspended {
		t.Fatalf("State() = %v, want suspended", th.State())
	}

	frozen := counter.Load()
	time.Sleep(30 * time.Millisecond)
	if got := counter.Load(); got != frozen {
		t.Fatalf("counter moved while suspended: %d -> %d", frozen, got)
	}

	if err := th.Resume(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "progress after resume", func() bool { return counter.Load() > frozen })
}

func TestThread_SuspendResumeCollapse(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)

	ops := []string{"suspend", "suspend", "resume", "resume", "suspend", "resume", "suspend", "suspend", "suspend", "resume"}
	model := primitives.Running
	for i, op := range ops {
		switch op {
		case "suspend":
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			err := th.SuspendWait(ctx)
			cancel()
			if err != nil {
				t.Fatalf("op %d suspend: %v", i, err)
			}
			model = primitives.Suspended
		case "resume":
			if err := th.Resume(); err != nil {
				t.Fatalf("op %d resume: %v", i, err)
			}
			model = primitives.Running
		}
		if got := th.State(); got != model {
			t.Fatalf("after op %d (%s): State() = %v, want %v", i, op, got, model)
		}
	}
}

func TestThread_ResumeWithdrawsPendingSuspend(t *testing.T) {
	gate := make(chan struct{})
	th, _ := NewThread(func(th *Thread, _ any) error {
		<-gate
		if !th.Checkpoint() {
			return errors.New("unexpected termination")
		}
		return nil
	})
	th.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := th.SuspendWait(ctx); !errors.Is(err, primitives.ErrTimeout) {
		t.Fatalf("SuspendWait on busy routine = %v, want Timeout", err)
	}
	if th.State() != primitives.Running {
		t.Errorf("unacknowledged suspend changed state to %v", th.State())
	}
	if err := th.Resume(); err != nil {
		t.Fatal(err)
	}

	close(gate)
	jctx, jcancel := context.WithTimeout(context.Background(), time.Second)
	defer jcancel()
	if err := th.JoinContext(jctx); err != nil {
		// A parked routine never returns; release it before failing.
		th.Terminate()
		th.Join()
		t.Fatalf("routine parked on a withdrawn suspension: %v", err)
	}
}

func TestThread_TerminateWhileSuspended(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)
	if err := th.SuspendWait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := th.Terminate(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := th.JoinContext(ctx); err != nil {
		t.Fatalf("Join after terminating a suspended thread: %v", err)
	}
}

func TestThread_ConcurrentJoiners(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)

	const n = 8
	var wg sync.WaitGroup
	var returned atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := th.Join(); err != nil {
				t.Errorf("Join: %v", err)
			}
			returned.Add(1)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	if returned.Load() != 0 {
		t.Fatal("joiners returned before termination")
	}
	th.Terminate()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d of %d joiners returned", returned.Load(), n)
	}
}

func TestThread_InvalidStateTransitions(t *testing.T) {
	th, _ := NewThread(func(*Thread, any) error { return nil })

	if err := th.Suspend(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Suspend before Start = %v", err)
	}
	if err := th.Resume(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Resume before Start = %v", err)
	}
	if err := th.Terminate(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Terminate before Start = %v", err)
	}
	if err := th.Join(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Join before Start = %v", err)
	}

	th.Start()
	th.Join()
	if err := th.Suspend(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Suspend after exit = %v", err)
	}
	if err := th.Resume(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Resume after exit = %v", err)
	}
}

func TestThread_JoinSelf(t *testing.T) {
	errc := make(chan error, 1)
	th, _ := NewThread(func(th *Thread, _ any) error {
		errc <- th.Join()
		return nil
	})
	th.Start()
	if err := <-errc; !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("self Join = %v, want InvalidState", err)
	}
	th.Join()
}

func TestThread_ContextCancelledOnTerminate(t *testing.T) {
	th, _ := NewThread(func(th *Thread, _ any) error {
		<-th.Context().Done()
		return th.Context().Err()
	})
	th.Start()
	th.Terminate()
	if err := th.Join(); !errors.Is(err, context.Canceled) {
		t.Errorf("Join = %v, want context.Canceled", err)
	}
}

func TestThread_PriorityRoundTrip(t *testing.T) {
	var counter atomic.Int64
	th, err := NewThread(looper(&counter))
	if err != nil {
		t.Fatal(err)
	}
	if err := th.SetPriority(primitives.BelowNormal); err != nil {
		t.Fatal(err)
	}
	if err := th.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		th.Terminate()
		th.Join()
	}()

	if got := th.Priority(); got != primitives.BelowNormal {
		t.Errorf("Priority() = %v", got)
	}
	if got := th.EffectivePriority(); got != primitives.BelowNormal {
		t.Errorf("EffectivePriority() = %v, want below-normal", got)
	}
}

func TestThread_SetPriorityAfterStart(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)

	err := th.SetPriority(primitives.Lowest)
	if platform.LivePriority() {
		if err != nil {
			t.Fatalf("live SetPriority: %v", err)
		}
		if got := th.EffectivePriority(); got != primitives.Lowest {
			t.Errorf("EffectivePriority() = %v, want lowest", got)
		}
	} else if !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("SetPriority after Start = %v, want InvalidState", err)
	}

	if err := th.SetPriority(primitives.Priority(9)); !errors.Is(err, primitives.ErrInvalidArgument) {
		t.Errorf("SetPriority(9) = %v, want InvalidArgument", err)
	}
}

// denyPriority makes every priority change fail as for an unprivileged
// process that is left at kept.
func denyPriority(t *testing.T, kept primitives.Priority) {
	t.Helper()
	orig := applyPriority
	applyPriority = func(int, primitives.Priority) (primitives.Priority, error) {
		return kept, &primitives.Error{Code: primitives.CodeInvalidState, Op: "platform.priority", Err: os.ErrPermission}
	}
	t.Cleanup(func() { applyPriority = orig })
}

func TestThread_PriorityRefusedAtStart(t *testing.T) {
	denyPriority(t, primitives.Normal)
	var counter atomic.Int64
	th, _ := NewThread(looper(&counter), WithPriority(primitives.Highest))
	if err := th.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		th.Terminate()
		th.Join()
	}()
	if got := th.Priority(); got != primitives.Highest {
		t.Errorf("Priority() = %v, want highest", got)
	}
	if got := th.EffectivePriority(); got != primitives.Normal {
		t.Errorf("EffectivePriority() = %v, want the level the OS kept", got)
	}
}

func TestThread_SetPriorityRefused(t *testing.T) {
	if !platform.LivePriority() {
		t.Skip("no live priority changes on " + platform.Name())
	}
	var counter atomic.Int64
	th := startLooper(t, &counter)
	denyPriority(t, primitives.Normal)

	err := th.SetPriority(primitives.Highest)
	if !errors.Is(err, primitives.ErrInvalidState) || !platform.Refused(err) {
		t.Fatalf("SetPriority = %v, want refusal", err)
	}
	if got := th.Priority(); got == primitives.Highest {
		t.Error("refused priority was recorded as requested")
	}
	if got := th.EffectivePriority(); got != primitives.Normal {
		t.Errorf("EffectivePriority() = %v, want normal", got)
	}
}

func TestThread_CloseWithConcurrentReaders(t *testing.T) {
	th, _ := NewThread(func(*Thread, any) error { return nil })
	th.Start()
	th.Join()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					th.State()
					th.NativeID()
				}
			}
		}()
	}
	err := th.Close()
	close(stop)
	wg.Wait()
	if err != nil {
		t.Fatalf("Close with readers: %v", err)
	}
	if got := th.State(); got != primitives.Terminated {
		t.Errorf("State() after Close = %v", got)
	}
	if err := th.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestThread_StackSize(t *testing.T) {
	th, _ := NewThread(func(*Thread, any) error { return nil })
	if got := th.StackSize(); got != platform.DefaultStackSize {
		t.Errorf("default StackSize() = %d", got)
	}
	if err := th.SetStackSize(1024); err != nil {
		t.Fatal(err)
	}
	if got := th.StackSize(); got != platform.MinStackSize {
		t.Errorf("StackSize() = %d, want clamp to %d", got, platform.MinStackSize)
	}
	if err := th.SetStackSize(0); !errors.Is(err, primitives.ErrInvalidArgument) {
		t.Errorf("SetStackSize(0) = %v", err)
	}

	th.Start()
	th.Join()
	if err := th.SetStackSize(1 << 20); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("SetStackSize after Start = %v, want InvalidState", err)
	}
}

func TestThread_CloseRequiresJoin(t *testing.T) {
	table := NewTable()
	var counter atomic.Int64
	th, err := NewThread(looper(&counter), WithRegistry(table))
	if err != nil {
		t.Fatal(err)
	}
	th.Start()

	if err := th.Close(); !errors.Is(err, primitives.ErrBusy) {
		t.Errorf("Close while running = %v, want Busy", err)
	}
	th.Terminate()
	th.Join()

	if err := th.Close(); err != nil {
		t.Fatalf("Close after Join: %v", err)
	}
	if err := th.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, ok := table.Lookup(th.ID()); ok {
		t.Error("closed thread still registered")
	}
	if err := th.Suspend(); !errors.Is(err, primitives.ErrInvalidState) {
		t.Errorf("Suspend after Close = %v, want InvalidState", err)
	}
	if th.State() != primitives.Terminated {
		t.Errorf("State() after Close = %v", th.State())
	}
	if err := th.Join(); err != nil {
		t.Errorf("Join after Close = %v", err)
	}
}

func TestNewThread_InvalidOptions(t *testing.T) {
	noop := func(*Thread, any) error { return nil }
	if _, err := NewThread(nil); !errors.Is(err, primitives.ErrInvalidArgument) {
		t.Errorf("NewThread(nil) = %v", err)
	}
	if _, err := NewThread(noop, WithPriority(primitives.Priority(5))); !errors.Is(err, primitives.ErrInvalidArgument) {
		t.Errorf("bad priority = %v", err)
	}
	if _, err := NewThread(noop, WithStackSize(-1)); !errors.Is(err, primitives.ErrInvalidArgument) {
		t.Errorf("bad stack size = %v", err)
	}
}

func TestThread_NativeContext(t *testing.T) {
	var counter atomic.Int64
	th := startLooper(t, &counter)
	if platform.Name() == "linux" && th.NativeID() <= 0 {
		t.Errorf("NativeID() = %d on linux", th.NativeID())
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []primitives.TransitionEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev primitives.TransitionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Label()
	}
	return out
}

func TestThread_PublishesTransitions(t *testing.T) {
	pub := &recordingPublisher{}
	var counter atomic.Int64
	th, _ := NewThread(looper(&counter), WithPublisher(pub), WithName("pub"))
	th.Start()
	th.SuspendWait(context.Background())
	th.Resume()
	th.Terminate()
	th.Join()

	// Events from the caller and from the thread itself may interleave, so
	// only the multiset is fixed.
	counts := map[string]int{}
	for _, label := range pub.labels() {
		counts[label]++
	}
	for _, label := range []string{"start", "suspend", "resume", "terminate", "exit"} {
		if counts[label] != 1 {
			t.Errorf("label %q published %d times; got %v", label, counts[label], pub.labels())
		}
	}
	if len(pub.labels()) != 5 {
		t.Errorf("published %v", pub.labels())
	}
}

func TestThread_Locals(t *testing.T) {
	th, _ := NewThread(func(th *Thread, _ any) error {
		th.Locals().Set("result", 42)
		return nil
	})
	th.Locals().Set("input", "x")
	th.Start()
	th.Join()
	if v, ok := th.Locals().Get("result"); !ok || v != 42 {
		t.Errorf("result = %v, %v", v, ok)
	}
	if v, _ := th.Locals().Get("input"); v != "x" {
		t.Errorf("input = %v", v)
	}
	if err := th.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(th.Locals().Snapshot()); n != 0 {
		t.Errorf("locals after Close = %d entries, want 0", n)
	}
}
