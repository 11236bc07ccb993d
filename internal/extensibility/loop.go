// Package extensibility provides reusable entry routines and routine
// wrappers for core.Thread.
package extensibility

import (
	"context"
	"time"

	"github.com/comalice/osalx/internal/core"
)

// Loop returns a routine that calls body once per checkpoint until
// termination is requested or body fails. Suspension takes effect between
// iterations.
func Loop(body func(ctx context.Context) error) core.Routine {
	return func(t *core.Thread, _ any) error {
		for t.Checkpoint() {
			if err := body(t.Context()); err != nil {
				return err
			}
		}
		return nil
	}
}

// Every is Loop with a pause of d between iterations. The pause ends early
// when termination is requested.
func Every(d time.Duration, body func(ctx context.Context) error) core.Routine {
	return func(t *core.Thread, _ any) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		for t.Checkpoint() {
			if err := body(t.Context()); err != nil {
				return err
			}
			timer.Reset(d)
			select {
			case <-timer.C:
			case <-t.Context().Done():
				return nil
			}
		}
		return nil
	}
}

// Drain returns a routine that hands every value received from ch to
// handle until ch is closed, handle fails, or termination is requested.
func Drain[T any](ch <-chan T, handle func(T) error) core.Routine {
	return func(t *core.Thread, _ any) error {
		for t.Checkpoint() {
			select {
			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if err := handle(v); err != nil {
					return err
				}
			case <-t.Context().Done():
				return nil
			}
		}
		return nil
	}
}
