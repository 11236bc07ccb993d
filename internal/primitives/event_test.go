package primitives

import (
	"encoding/json"
	"testing"
)

func TestTransitionEventLabel(t *testing.T) {
	tests := []struct {
		from, to State
		want     string
	}{
		{Initialized, Running, "start"},
		{Running, Suspended, "suspend"},
		{Suspended, Running, "resume"},
		{Suspended, Terminating, "terminate"},
		{Running, Terminated, "return"},
		{Terminated, Running, ""},
	}
	for _, tt := range tests {
		ev := NewTransitionEvent(1, "x", tt.from, tt.to)
		if got := ev.Label(); got != tt.want {
			t.Errorf("%v -> %v: Label() = %q, want %q", tt.from, tt.to, got, tt.want)
		}
		if ev.Timestamp.IsZero() {
			t.Error("event not timestamped")
		}
	}
}

func TestTransitionEventJSON(t *testing.T) {
	ev := NewTransitionEvent(3, "w", Running, Suspended)
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["from"] != "running" || m["to"] != "suspended" || m["name"] != "w" {
		t.Errorf("encoded = %s", data)
	}
}
