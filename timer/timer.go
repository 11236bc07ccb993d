package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/diag"
	"github.com/comalice/osalx/internal/primitives"
)

// DefaultInterval is used when Config.Interval is zero (60 ticks per second).
const DefaultInterval = 16667 * time.Microsecond

// Callback runs once per tick on the timer's thread. ctx is cancelled when
// the timer is stopped.
type Callback func(ctx context.Context, tick uint64) error

// Config configures a Timer.
type Config struct {
	Interval time.Duration       // Tick period (default: DefaultInterval)
	OneShot  bool                // Fire once, then terminate
	Name     string              // Thread name (default: "timer-<id>")
	Priority primitives.Priority // Thread priority
	Logger   *slog.Logger        // Default: the diagnostic logger
}

// Timer fires a Callback periodically on its own thread.
type Timer struct {
	cb  Callback
	cfg Config

	mu sync.Mutex
	th *core.Thread

	poke     chan struct{}
	ticks    atomic.Uint64
	failures atomic.Uint64
}

// New validates cfg and returns a stopped timer.
func New(cb Callback, cfg Config) (*Timer, error) {
	if cb == nil {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "timer.create", "nil callback")
	}
	if cfg.Interval < 0 {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "timer.create", "negative interval %v", cfg.Interval)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if !cfg.Priority.Valid() {
		return nil, primitives.NewError(primitives.CodeInvalidArgument, "timer.create", "invalid priority %d", int8(cfg.Priority))
	}
	if cfg.Logger == nil {
		cfg.Logger = diag.Logger()
	}
	return &Timer{cb: cb, cfg: cfg, poke: make(chan struct{}, 1)}, nil
}

// Start creates the timer's thread. The first tick fires one Interval later.
// A timer starts once.
func (tm *Timer) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.th != nil {
		return primitives.NewError(primitives.CodeInvalidState, "timer.start", "timer already started")
	}

	opts := []core.Option{
		core.WithContext(ctx),
		core.WithPriority(tm.cfg.Priority),
		core.WithLogger(tm.cfg.Logger),
	}
	if tm.cfg.Name != "" {
		opts = append(opts, core.WithName(tm.cfg.Name))
	}
	th, err := core.NewThread(tm.run, opts...)
	if err != nil {
		return err
	}
	if err := th.Start(); err != nil {
		return err
	}
	tm.th = th
	return nil
}

func (tm *Timer) thread(op string) (*core.Thread, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.th == nil {
		return nil, primitives.NewError(primitives.CodeInvalidState, op, "timer not started")
	}
	return tm.th, nil
}

// Pause stops ticking until Resume. It returns once the timer's thread is
// suspended; a callback in progress finishes first.
func (tm *Timer) Pause() error {
	th, err := tm.thread("timer.pause")
	if err != nil {
		return err
	}
	if err := th.Suspend(); err != nil {
		return err
	}
	select {
	case tm.poke <- struct{}{}:
	default:
	}
	return th.SuspendWait(context.Background())
}

// Resume restarts a paused timer.
func (tm *Timer) Resume() error {
	th, err := tm.thread("timer.resume")
	if err != nil {
		return err
	}
	return th.Resume()
}

// Stop terminates the timer's thread and waits for it to exit. Stopping a
// timer that never started is a no-op.
func (tm *Timer) Stop() error {
	tm.mu.Lock()
	th := tm.th
	tm.mu.Unlock()
	if th == nil {
		return nil
	}
	if err := th.Terminate(); err != nil {
		return err
	}
	return th.Join()
}

// Done is closed when the timer's thread has exited. Nil before Start.
func (tm *Timer) Done() <-chan struct{} {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.th == nil {
		return nil
	}
	return tm.th.Done()
}

// State returns the lifecycle state of the timer's thread.
func (tm *Timer) State() primitives.State {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.th == nil {
		return primitives.Initialized
	}
	return tm.th.State()
}

// Ticks returns how many ticks have fired.
func (tm *Timer) Ticks() uint64 { return tm.ticks.Load() }

// Failures returns how many callbacks returned an error or panicked.
func (tm *Timer) Failures() uint64 { return tm.failures.Load() }

func (tm *Timer) run(th *core.Thread, _ any) error {
	ticker := time.NewTicker(tm.cfg.Interval)
	defer ticker.Stop()

	ctx := th.Context()
	for th.Checkpoint() {
		select {
		case <-ticker.C:
		case <-tm.poke:
			continue
		case <-ctx.Done():
			return nil
		}
		tm.fire(ctx, th)
		if tm.cfg.OneShot {
			return nil
		}
	}
	return nil
}

func (tm *Timer) fire(ctx context.Context, th *core.Thread) {
	n := tm.ticks.Add(1)
	if err := tm.invoke(ctx, n); err != nil {
		tm.failures.Add(1)
		tm.cfg.Logger.Warn("timer callback failed", "thread", th.ID(), "name", th.Name(), "tick", n, "err", err)
	}
}

func (tm *Timer) invoke(ctx context.Context, n uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()
	return tm.cb(ctx, n)
}
