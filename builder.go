package osalx

import (
	"context"
	"log/slog"
)

// ThreadBuilder provides a fluent API for configuring a thread before it is
// created. Setters never fail; Build reports the first invalid setting.
type ThreadBuilder struct {
	routine Routine
	opts    []Option
}

// NewThreadBuilder starts configuring a thread that will run routine.
func NewThreadBuilder(routine Routine) *ThreadBuilder {
	return &ThreadBuilder{routine: routine}
}

// Name sets the thread name.
func (b *ThreadBuilder) Name(name string) *ThreadBuilder {
	return b.with(WithName(name))
}

// Arg sets the opaque argument handed to the routine.
func (b *ThreadBuilder) Arg(arg any) *ThreadBuilder {
	return b.with(WithArg(arg))
}

// Priority sets the priority applied at start.
func (b *ThreadBuilder) Priority(p Priority) *ThreadBuilder {
	return b.with(WithPriority(p))
}

// StackSize sets the requested stack size in bytes.
func (b *ThreadBuilder) StackSize(bytes int) *ThreadBuilder {
	return b.with(WithStackSize(bytes))
}

// Config applies a declarative thread configuration.
func (b *ThreadBuilder) Config(cfg ThreadConfig) *ThreadBuilder {
	return b.with(WithConfig(cfg))
}

// Context sets the parent of the thread's Context.
func (b *ThreadBuilder) Context(ctx context.Context) *ThreadBuilder {
	return b.with(WithContext(ctx))
}

// Publisher sets the destination of lifecycle transition events.
func (b *ThreadBuilder) Publisher(p Publisher) *ThreadBuilder {
	return b.with(WithPublisher(p))
}

// Registry registers the thread in r when built.
func (b *ThreadBuilder) Registry(r Registry) *ThreadBuilder {
	return b.with(WithRegistry(r))
}

// Visualizer sets the lifecycle visualizer.
func (b *ThreadBuilder) Visualizer(v Visualizer) *ThreadBuilder {
	return b.with(WithVisualizer(v))
}

// Logger sets the thread's logger.
func (b *ThreadBuilder) Logger(l *slog.Logger) *ThreadBuilder {
	return b.with(WithLogger(l))
}

func (b *ThreadBuilder) with(opt Option) *ThreadBuilder {
	b.opts = append(b.opts, opt)
	return b
}

// Build validates the configuration and creates the thread, Initialized.
func (b *ThreadBuilder) Build() (*Thread, error) {
	return NewThread(b.routine, b.opts...)
}

// Spawn builds and starts the thread.
func (b *ThreadBuilder) Spawn() (*Thread, error) {
	th, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := th.Start(); err != nil {
		return nil, err
	}
	return th, nil
}
