// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/primitives"
)

// GenProfile creates a valid profile of n threads cycling through every
// priority level.
func GenProfile(n int) primitives.Profile {
	if n < 1 {
		n = 1
	}
	p := primitives.Profile{Version: "v1.0.0", Threads: make([]primitives.ThreadConfig, n)}
	for i := range p.Threads {
		p.Threads[i] = primitives.ThreadConfig{
			Name:      fmt.Sprintf("t%d", i),
			Priority:  primitives.Priorities[i%len(primitives.Priorities)],
			StackSize: (64 << 10) * (1 + i%4),
		}
	}
	return p
}

// GenProfileYAML renders GenProfile(n) as YAML.
func GenProfileYAML(n int) []byte {
	data, err := yaml.Marshal(GenProfile(n))
	if err != nil {
		panic(err)
	}
	return data
}

// GenTable registers n Initialized threads in a new table.
func GenTable(n int) *core.Table {
	table := core.NewTable()
	noop := func(*core.Thread, any) error { return nil }
	for _, cfg := range GenProfile(n).Threads {
		if _, err := core.NewThread(noop, core.WithConfig(cfg), core.WithRegistry(table)); err != nil {
			panic(err)
		}
	}
	return table
}

// GenSnapshotYAML generates YAML bytes for a process snapshot of n threads.
func GenSnapshotYAML(n int) []byte {
	data, err := yaml.Marshal(GenTable(n).Snapshot(fmt.Sprintf("bench_%d", n)))
	if err != nil {
		panic(err)
	}
	return data
}

// Looper is a routine that spins on its checkpoint until terminated.
func Looper(t *core.Thread, _ any) error {
	for t.Checkpoint() {
	}
	return nil
}
