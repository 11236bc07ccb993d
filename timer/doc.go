// Package timer runs callbacks at a fixed interval on a dedicated thread.
//
// Each Timer owns one core.Thread. The thread's routine waits for the next
// tick, runs the callback, and passes a cooperative checkpoint between
// ticks, so a timer can be paused, resumed and stopped with the same
// semantics as any other thread.
//
// # Example Usage
//
//	tm, _ := timer.New(func(ctx context.Context, tick uint64) error {
//		sample()
//		return nil
//	}, timer.Config{Interval: 10 * time.Millisecond, Name: "sampler"})
//	tm.Start(ctx)
//	defer tm.Stop()
//
// # Tick Semantics
//
//   - Ticks are numbered from 1 and counted whether or not the callback
//     succeeds; failures are counted separately.
//   - A callback that panics is recovered and logged; the timer keeps going.
//   - Ticks missed while the callback runs long or while the timer is paused
//     are dropped, not queued (time.Ticker semantics).
//   - A one-shot timer fires once and its thread then terminates.
package timer
