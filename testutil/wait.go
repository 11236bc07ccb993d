// Package testutil provides polling helpers shared by the test suites, so
// tests wait on observable conditions instead of fixed sleeps.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/primitives"
)

// DefaultTimeout bounds every wait that does not pass its own.
const DefaultTimeout = 2 * time.Second

const pollInterval = time.Millisecond

// Poll reports whether cond became true within timeout.
func Poll(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// Eventually fails the test unless cond becomes true within timeout.
func Eventually(tb testing.TB, timeout time.Duration, cond func() bool, format string, args ...any) {
	tb.Helper()
	if !Poll(timeout, cond) {
		tb.Fatalf("condition not met within %v: %s", timeout, fmt.Sprintf(format, args...))
	}
}

// WaitForState fails the test unless th reaches want within DefaultTimeout.
func WaitForState(tb testing.TB, th *core.Thread, want primitives.State) {
	tb.Helper()
	if !Poll(DefaultTimeout, func() bool { return th.State() == want }) {
		tb.Fatalf("thread %v (%s): state %v, want %v", th.ID(), th.Name(), th.State(), want)
	}
}

// Probe counts progress made by a routine.
type Probe struct {
	n atomic.Int64
}

// Tick records one unit of progress.
func (p *Probe) Tick() { p.n.Add(1) }

// Count returns the progress recorded so far.
func (p *Probe) Count() int64 { return p.n.Load() }

// WaitFor fails the test unless the count reaches atLeast.
func (p *Probe) WaitFor(tb testing.TB, atLeast int64) {
	tb.Helper()
	if !Poll(DefaultTimeout, func() bool { return p.Count() >= atLeast }) {
		tb.Fatalf("probe stuck at %d, want >= %d", p.Count(), atLeast)
	}
}

// AssertStalled fails the test if the count moves during d.
func (p *Probe) AssertStalled(tb testing.TB, d time.Duration) {
	tb.Helper()
	before := p.Count()
	time.Sleep(d)
	if after := p.Count(); after != before {
		tb.Fatalf("probe moved from %d to %d while it should be stalled", before, after)
	}
}
