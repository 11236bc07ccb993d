package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/comalice/osalx/internal/diag"
	"github.com/comalice/osalx/internal/platform"
	"github.com/comalice/osalx/internal/primitives"
	"github.com/comalice/osalx/internal/syncprim"
)

// Routine is a thread's entry routine. It runs exactly once, on the thread's
// own native context, and receives the thread itself plus the caller's
// opaque argument. The argument is never retained past the routine's return
// nor released by the thread.
type Routine func(t *Thread, arg any) error

// Pending request bits, written under the thread mutex and read atomically
// by Checkpoint's fast path.
const (
	reqSuspend uint32 = 1 << iota
	reqTerminate
)

// ackSignal is closed once a suspension request is either acknowledged by
// the routine or withdrawn.
type ackSignal struct {
	ch    chan struct{}
	acked bool
}

func (a *ackSignal) finish(acked bool) {
	a.acked = acked
	close(a.ch)
}

// Thread is one schedulable unit of execution backed by a goroutine locked
// to its own OS thread.
//
// Lifecycle: Initialized -> Running <-> Suspended -> Terminating -> Terminated.
// Suspension and termination are cooperative: the routine observes them at
// its Checkpoint calls. The lifecycle fields are only touched while holding
// the thread's internal Mutex, and nothing blocks on the wake-up semaphore
// while that Mutex is held.
type Thread struct {
	id      primitives.ThreadID
	name    string
	routine Routine
	arg     any

	mu   *syncprim.Mutex
	wake *syncprim.LightSemaphore

	state    primitives.State
	requests atomic.Uint32
	ack      *ackSignal

	priority  primitives.Priority
	effective primitives.Priority
	stackSize int
	nativeID  int
	gid       atomic.Int64

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	createdAt time.Time
	startedAt time.Time
	exitedAt  time.Time

	locals *primitives.Locals

	publisher  Publisher
	registry   Registry
	visualizer Visualizer
	logger     *slog.Logger
}

// NewThread constructs a thread in the Initialized state. No native context
// exists until Start.
func NewThread(routine Routine, opts ...Option) (*Thread, error) {
	if routine == nil {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "thread.create", "nil routine")
	}
	wake, err := syncprim.NewLightSemaphore(1)
	if err != nil {
		return nil, primitives.WrapError(primitives.CodeResourceExhausted, "thread.create", err)
	}

	t := &Thread{
		id:        primitives.NextThreadID(),
		routine:   routine,
		mu:        syncprim.NewMutex(),
		wake:      wake,
		locals:    primitives.NewLocals(),
		state:     primitives.Initialized,
		priority:  primitives.Normal,
		parent:    context.Background(),
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.name == "" {
		t.name = fmt.Sprintf("thread-%d", uint64(t.id))
	}
	if !t.priority.Valid() {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "thread.create", "invalid priority %d", int8(t.priority))
	}
	if t.stackSize < 0 {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "thread.create", "negative stack size %d", t.stackSize)
	}
	t.stackSize = platform.ClampStackSize(t.stackSize)
	t.effective = t.priority

	if t.registry != nil {
		if err := t.registry.Register(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// lock acquires the internal mutex. It fails with InvalidState once the
// thread has been closed.
func (t *Thread) lock(op string) error {
	if err := t.mu.Acquire(); err != nil {
		return &primitives.Error{Code: primitives.CodeInvalidState, Op: op, Message: "thread closed", Err: err}
	}
	return nil
}

func (t *Thread) unlock() {
	if err := t.mu.Release(); err != nil {
		t.log().Error("internal mutex release failed", "thread", t.id, "err", err)
	}
}

// view runs fn with the lifecycle fields stable. Closed threads are frozen,
// so their fields are read without the lock.
func (t *Thread) view(fn func()) {
	if t.mu.Acquire() == nil {
		defer t.mu.Release()
	}
	fn()
}

func (t *Thread) invalidState(op string) error {
	return primitives.NewError(primitives.CodeInvalidState, op, "thread %v is %v", t.id, t.state)
}

// setState moves to the next lifecycle state. Callers hold the mutex.
func (t *Thread) setState(to primitives.State) primitives.TransitionEvent {
	from := t.state
	if !primitives.CanTransition(from, to) {
		t.log().Error("illegal lifecycle transition", "thread", t.id, "from", from, "to", to)
	}
	t.state = to
	return primitives.NewTransitionEvent(t.id, t.name, from, to)
}

func (t *Thread) setRequest(bit uint32) {
	t.requests.Store(t.requests.Load() | bit)
}

func (t *Thread) clearRequest(bit uint32) {
	t.requests.Store(t.requests.Load() &^ bit)
}

// emit publishes transitions. Callers must not hold the mutex.
func (t *Thread) emit(events ...primitives.TransitionEvent) {
	for _, ev := range events {
		t.log().Debug("lifecycle transition", "thread", ev.Thread, "name", ev.Name, "from", ev.From, "to", ev.To)
		if t.publisher == nil {
			continue
		}
		if err := t.publisher.Publish(context.Background(), ev); err != nil {
			t.log().Warn("publish transition failed", "thread", ev.Thread, "err", err)
		}
	}
}

func (t *Thread) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return diag.Logger()
}

// Start creates the native execution context and runs the routine on it.
// It returns once the context exists and the requested priority has been
// applied. Start is valid only once, from Initialized.
func (t *Thread) Start() error {
	if err := t.lock("thread.start"); err != nil {
		return err
	}
	if t.state != primitives.Initialized {
		err := t.invalidState("thread.start")
		t.unlock()
		return err
	}
	ev := t.setState(primitives.Running)
	t.ctx, t.cancel = context.WithCancel(t.parent)
	t.startedAt = time.Now()
	t.unlock()

	t.emit(ev)
	ready := make(chan struct{})
	go t.run(ready)
	<-ready
	return nil
}

// applyPriority is replaced in tests to simulate an unprivileged process.
var applyPriority = platform.ApplyPriority

func (t *Thread) run(ready chan<- struct{}) {
	// Never unlocked: the OS thread is the native context and exits together
	// with this goroutine, taking any priority change with it.
	runtime.LockOSThread()

	t.mu.Acquire()
	t.gid.Store(primitives.GoroutineID())
	t.nativeID = platform.CurrentThreadID()
	eff, err := applyPriority(t.nativeID, t.priority)
	switch {
	case err == nil:
		t.effective = eff
	case platform.Refused(err):
		t.effective = eff
		t.log().Warn("priority refused, nearest level in effect", "thread", t.id, "priority", t.priority, "effective", eff, "err", err)
	default:
		t.log().Warn("apply priority failed", "thread", t.id, "priority", t.priority, "err", err)
	}
	t.unlock()
	close(ready)

	var (
		rerr     error
		returned bool
	)
	defer func() {
		if !returned {
			rerr = fmt.Errorf("thread %v: routine exited via runtime.Goexit", t.id)
		}
		t.finish(rerr)
	}()
	rerr = t.invoke()
	returned = true
}

func (t *Thread) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.log().Error("routine panicked", "thread", t.id, "name", t.name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("thread %v: routine panicked: %v", t.id, r)
		}
	}()
	return t.routine(t, t.arg)
}

// finish records the exit of the routine and releases every joiner.
func (t *Thread) finish(err error) {
	t.mu.Acquire()
	ev := t.setState(primitives.Terminated)
	t.err = err
	t.exitedAt = time.Now()
	if t.requests.Load()&reqSuspend != 0 {
		t.clearRequest(reqSuspend)
		t.ack.finish(false)
	}
	t.unlock()

	t.cancel()
	t.emit(ev)
	close(t.done)
}

// Checkpoint is the cooperative checkpoint. Routines call it at safe points.
//
// While a suspension is pending it marks the thread Suspended and parks the
// calling routine until Resume or Terminate. It returns false once
// termination has been requested; the routine should then unwind and return.
// Called from any goroutine other than the thread's own it never parks.
func (t *Thread) Checkpoint() bool {
	r := t.requests.Load()
	if r == 0 {
		return true
	}
	if r&reqTerminate != 0 || primitives.GoroutineID() != t.gid.Load() {
		return r&reqTerminate == 0
	}

	if err := t.lock("thread.checkpoint"); err != nil {
		return false
	}
	r = t.requests.Load()
	if r&reqTerminate != 0 {
		t.unlock()
		return false
	}
	if r&reqSuspend == 0 {
		t.unlock()
		return true
	}
	t.clearRequest(reqSuspend)
	ev := t.setState(primitives.Suspended)
	t.ack.finish(true)
	t.unlock()

	t.emit(ev)
	t.wake.Wait()
	return t.requests.Load()&reqTerminate == 0
}

// TerminationRequested reports whether Terminate has been called.
func (t *Thread) TerminationRequested() bool {
	return t.requests.Load()&reqTerminate != 0
}

// Suspend requests suspension. The thread becomes Suspended when its routine
// next reaches Checkpoint; use SuspendWait to block until then. Suspending a
// Suspended thread is a no-op.
func (t *Thread) Suspend() error {
	_, err := t.requestSuspend("thread.suspend")
	return err
}

// SuspendWait requests suspension and waits until the routine has parked.
// It fails with Timeout if ctx ends first, and with InvalidState if the
// request was withdrawn by Resume, Terminate or the routine returning.
func (t *Thread) SuspendWait(ctx context.Context) error {
	ack, err := t.requestSuspend("thread.suspend")
	if err != nil || ack == nil {
		return err
	}
	select {
	case <-ack.ch:
	case <-ctx.Done():
		return primitives.WrapError(primitives.CodeTimeout, "thread.suspend", ctx.Err())
	}
	if !ack.acked {
		return primitives.NewError(primitives.CodeInvalidState, "thread.suspend", "suspension of %v withdrawn before acknowledgement", t.id)
	}
	return nil
}

func (t *Thread) requestSuspend(op string) (*ackSignal, error) {
	if err := t.lock(op); err != nil {
		return nil, err
	}
	defer t.unlock()

	switch t.state {
	case primitives.Suspended:
		return nil, nil
	case primitives.Running:
		if t.requests.Load()&reqSuspend == 0 {
			t.ack = &ackSignal{ch: make(chan struct{})}
			t.setRequest(reqSuspend)
		}
		return t.ack, nil
	default:
		return nil, t.invalidState(op)
	}
}

// Resume wakes a Suspended thread. On a Running thread it only withdraws a
// suspension that has not been acknowledged yet.
func (t *Thread) Resume() error {
	if err := t.lock("thread.resume"); err != nil {
		return err
	}
	switch t.state {
	case primitives.Running:
		if t.requests.Load()&reqSuspend != 0 {
			t.clearRequest(reqSuspend)
			t.ack.finish(false)
		}
		t.unlock()
		return nil
	case primitives.Suspended:
		ev := t.setState(primitives.Running)
		t.wake.Signal()
		t.unlock()
		t.emit(ev)
		return nil
	default:
		err := t.invalidState("thread.resume")
		t.unlock()
		return err
	}
}

// Terminate requests cooperative unwind: Checkpoint starts returning false,
// the thread's Context is cancelled, and a Suspended routine is woken so it
// can observe the request. The native context is never killed. Repeated
// calls are no-ops.
func (t *Thread) Terminate() error {
	if err := t.lock("thread.terminate"); err != nil {
		return err
	}
	var ev primitives.TransitionEvent
	switch t.state {
	case primitives.Terminating, primitives.Terminated:
		t.unlock()
		return nil
	case primitives.Running:
		t.setRequest(reqTerminate)
		if t.requests.Load()&reqSuspend != 0 {
			t.clearRequest(reqSuspend)
			t.ack.finish(false)
		}
		ev = t.setState(primitives.Terminating)
	case primitives.Suspended:
		t.setRequest(reqTerminate)
		ev = t.setState(primitives.Terminating)
		t.wake.Signal()
	default:
		err := t.invalidState("thread.terminate")
		t.unlock()
		return err
	}
	cancel := t.cancel
	t.unlock()

	cancel()
	t.emit(ev)
	return nil
}

// Join blocks until the routine has returned and its native context has
// exited, then returns the routine's error. Any number of goroutines may
// join concurrently.
func (t *Thread) Join() error {
	return t.JoinContext(context.Background())
}

// JoinContext is Join bounded by ctx.
func (t *Thread) JoinContext(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	default:
	}

	var state primitives.State
	t.view(func() { state = t.state })
	if state == primitives.Initialized {
		return primitives.NewError(primitives.CodeInvalidState, "thread.join", "thread %v not started", t.id)
	}
	if t.gid.Load() == primitives.GoroutineID() {
		return primitives.NewError(primitives.CodeInvalidState, "thread.join", "thread %v cannot join itself", t.id)
	}

	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return primitives.WrapError(primitives.CodeTimeout, "thread.join", ctx.Err())
	}
}

// Done is closed once the thread reaches Terminated.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// SetPriority changes the requested priority. Before Start it is recorded
// and applied when the native context is created. Afterwards it is applied
// immediately where the platform supports live changes; elsewhere it fails
// with InvalidState. A live change the OS refuses also fails with
// InvalidState; the requested priority is kept and EffectivePriority reports
// the level still in effect.
func (t *Thread) SetPriority(p primitives.Priority) error {
	if !p.Valid() {
		return primitives.NewError(primitives.CodeInvalidArgument, "thread.set_priority", "invalid priority %d", int8(p))
	}
	if err := t.lock("thread.set_priority"); err != nil {
		return err
	}
	defer t.unlock()

	switch t.state {
	case primitives.Initialized:
		t.priority, t.effective = p, p
		return nil
	case primitives.Terminated:
		return t.invalidState("thread.set_priority")
	}
	if !platform.LivePriority() {
		return primitives.NewError(primitives.CodeInvalidState, "thread.set_priority",
			"platform %s cannot change the priority of a started thread", platform.Name())
	}
	eff, err := applyPriority(t.nativeID, p)
	if err != nil {
		if platform.Refused(err) {
			t.effective = eff
		}
		return err
	}
	t.priority, t.effective = p, eff
	return nil
}

// SetStackSize records the stack size for the native context. Sizes below
// platform.MinStackSize are raised to it. Only valid before Start.
func (t *Thread) SetStackSize(bytes int) error {
	if bytes <= 0 {
		return primitives.NewError(primitives.CodeInvalidArgument, "thread.set_stack_size", "stack size %d", bytes)
	}
	if err := t.lock("thread.set_stack_size"); err != nil {
		return err
	}
	defer t.unlock()
	if t.state != primitives.Initialized {
		return t.invalidState("thread.set_stack_size")
	}
	t.stackSize = platform.ClampStackSize(bytes)
	return nil
}

// Close destroys the thread object. It fails with Busy while the native
// context may still run; join first. Closing twice is a no-op.
func (t *Thread) Close() error {
	if err := t.mu.Acquire(); err != nil {
		// Already destroyed.
		return nil
	}
	switch t.state {
	case primitives.Running, primitives.Suspended, primitives.Terminating:
		state := t.state
		t.unlock()
		return primitives.NewError(primitives.CodeBusy, "thread.close", "thread %v is %v; join before closing", t.id, state)
	}
	// Readers queued behind us fall back to unlocked reads of the final state.
	if err := t.mu.Retire(); err != nil {
		return err
	}
	t.locals.Clear()
	if t.registry != nil {
		t.registry.Unregister(t.id)
	}
	return nil
}

// ID returns the thread's identity.
func (t *Thread) ID() primitives.ThreadID { return t.id }

// Name returns the thread's name.
func (t *Thread) Name() string { return t.name }

// State returns the current lifecycle state.
func (t *Thread) State() primitives.State {
	var s primitives.State
	t.view(func() { s = t.state })
	return s
}

// Priority returns the requested priority.
func (t *Thread) Priority() primitives.Priority {
	var p primitives.Priority
	t.view(func() { p = t.priority })
	return p
}

// EffectivePriority returns the priority the platform put in effect, which
// is the requested one or its nearest supported equivalent.
func (t *Thread) EffectivePriority() primitives.Priority {
	var p primitives.Priority
	t.view(func() { p = t.effective })
	return p
}

// StackSize returns the clamped stack size.
func (t *Thread) StackSize() int {
	var n int
	t.view(func() { n = t.stackSize })
	return n
}

// NativeID returns the OS thread id of the native context, or 0 before
// Start and on platforms without one.
func (t *Thread) NativeID() int {
	var id int
	t.view(func() { id = t.nativeID })
	return id
}

// Locals returns the thread's local storage. It outlives the routine, so
// values set by the routine can be read after Join; Close clears it.
func (t *Thread) Locals() *primitives.Locals { return t.locals }

// Context is cancelled when termination is requested or the routine returns.
// Before Start it returns the parent context.
func (t *Thread) Context() context.Context {
	var ctx context.Context
	t.view(func() { ctx = t.ctx })
	if ctx == nil {
		return t.parent
	}
	return ctx
}

// Snapshot returns a serialisable view of the thread.
func (t *Thread) Snapshot() ThreadSnapshot {
	var s ThreadSnapshot
	t.view(func() {
		s = ThreadSnapshot{
			ID:                t.id,
			Name:              t.name,
			State:             t.state,
			Priority:          t.priority,
			EffectivePriority: t.effective,
			StackSize:         t.stackSize,
			NativeID:          t.nativeID,
			CreatedAt:         t.createdAt,
			StartedAt:         t.startedAt,
			ExitedAt:          t.exitedAt,
		}
		if t.err != nil {
			s.Error = t.err.Error()
		}
	})
	return s
}

// Visualize returns the Graphviz DOT rendering of the lifecycle graph with
// the current state highlighted.
func (t *Thread) Visualize() string {
	if t.visualizer == nil {
		return "ERROR: No visualizer configured. Use WithVisualizer(&production.DefaultVisualizer{})"
	}
	return t.visualizer.ExportDOT(t.State())
}
