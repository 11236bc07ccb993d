package primitives

import (
	"fmt"
	"strings"
)

// Priority is an ordered scheduling priority level.
// The platform layer maps each level to a native priority class.
type Priority int8

const (
	Lowest Priority = iota - 2
	BelowNormal
	Normal
	AboveNormal
	Highest
)

// Priorities lists every level from lowest to highest.
var Priorities = []Priority{Lowest, BelowNormal, Normal, AboveNormal, Highest}

func (p Priority) String() string {
	switch p {
	case Lowest:
		return "lowest"
	case BelowNormal:
		return "below-normal"
	case Normal:
		return "normal"
	case AboveNormal:
		return "above-normal"
	case Highest:
		return "highest"
	default:
		return fmt.Sprintf("priority(%d)", int8(p))
	}
}

// Valid reports whether p is one of the declared levels.
func (p Priority) Valid() bool {
	return p >= Lowest && p <= Highest
}

// ParsePriority parses the text form produced by String.
// Underscores and spaces are accepted in place of the hyphen.
func ParsePriority(s string) (Priority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("_", "-", " ", "-").Replace(name)
	for _, p := range Priorities {
		if p.String() == name {
			return p, nil
		}
	}
	return Normal, NewError(CodeInvalidArgument, "priority.parse", "unknown priority %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, NewError(CodeInvalidArgument, "priority.marshal", "unknown priority %d", int8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	v, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
