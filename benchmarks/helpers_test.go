package benchmarks

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/production"
)

func TestGeneratedFixturesAreValid(t *testing.T) {
	p, err := production.DecodeProfile(bytes.NewReader(GenProfileYAML(12)))
	if err != nil {
		t.Fatalf("generated profile rejected: %v", err)
	}
	if len(p.Threads) != 12 {
		t.Errorf("threads = %d", len(p.Threads))
	}

	var snap core.ProcessSnapshot
	if err := yaml.Unmarshal(GenSnapshotYAML(5), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Threads) != 5 || snap.Name != "bench_5" {
		t.Errorf("snapshot = %+v", snap)
	}
}
