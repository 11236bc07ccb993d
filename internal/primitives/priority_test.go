package primitives

import (
	"errors"
	"testing"
)

func TestPriority_Ordering(t *testing.T) {
	for i := 1; i < len(Priorities); i++ {
		if Priorities[i-1] >= Priorities[i] {
			t.Errorf("%v should be lower than %v", Priorities[i-1], Priorities[i])
		}
	}
	var zero Priority
	if zero != Normal {
		t.Errorf("zero Priority = %v, want normal", zero)
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{
		"lowest":       Lowest,
		"below-normal": BelowNormal,
		"Below_Normal": BelowNormal,
		" normal ":     Normal,
		"above normal": AboveNormal,
		"HIGHEST":      Highest,
	}
	for in, want := range cases {
		got, err := ParsePriority(in)
		if err != nil {
			t.Errorf("ParsePriority(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePriority(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParsePriority("realtime"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParsePriority(realtime) err = %v, want InvalidArgument", err)
	}
}

func TestPriority_MarshalInvalid(t *testing.T) {
	if _, err := Priority(9).MarshalText(); err == nil {
		t.Error("expected error marshalling out-of-range priority")
	}
}
