// Package benchmarks provides memory footprint and serialisation benchmarks.
package benchmarks

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/production"
)

func BenchmarkMemoryFootprint(b *testing.B) {
	noop := func(*core.Thread, any) error { return nil }
	numThreads := 1000
	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	threads := make([]*core.Thread, numThreads)
	for i := 0; i < numThreads; i++ {
		th, err := core.NewThread(noop)
		if err != nil {
			b.Fatal(err)
		}
		threads[i] = th
	}
	runtime.GC()
	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	bytesPerThread := (after.TotalAlloc - before.TotalAlloc) / uint64(numThreads)
	b.ReportMetric(float64(bytesPerThread)/1024, "KB/thread")
	runtime.KeepAlive(threads)
}

func BenchmarkSnapshotYAML(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("threads=%d", n), func(b *testing.B) {
			table := GenTable(n)
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := yaml.Marshal(table.Snapshot("bench")); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSnapshotYAMLDecode(b *testing.B) {
	data := GenSnapshotYAML(100)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var snap core.ProcessSnapshot
		if err := yaml.Unmarshal(data, &snap); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProfileDecode(b *testing.B) {
	data := GenProfileYAML(100)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := production.DecodeProfile(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
