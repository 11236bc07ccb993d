package primitives

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a thread.
type State int32

const (
	// Initialized is the sole initial state: constructed, no native context yet.
	Initialized State = iota
	// Running means the native context exists and is not parked.
	Running
	// Suspended means the routine acknowledged a suspension and is parked.
	Suspended
	// Terminating means termination was requested and the routine has not yet returned.
	Terminating
	// Terminated is the only terminal state: the native context has exited.
	Terminated
)

var stateNames = [...]string{
	Initialized: "initialized",
	Running:     "running",
	Suspended:   "suspended",
	Terminating: "terminating",
	Terminated:  "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	return s >= Initialized && s <= Terminated
}

// Final reports whether s is terminal.
func (s State) Final() bool {
	return s == Terminated
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, NewError(CodeInvalidArgument, "state.marshal", "unknown state %d", int32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range stateNames {
		if n == name {
			*s = State(i)
			return nil
		}
	}
	return NewError(CodeInvalidArgument, "state.unmarshal", "unknown state %q", name)
}

// Edge is one permitted lifecycle transition.
type Edge struct {
	From  State
	To    State
	Label string
}

// Edges lists every permitted transition in document order.
// A routine that returns on its own moves Running directly to Terminated.
var Edges = []Edge{
	{Initialized, Running, "start"},
	{Running, Suspended, "suspend"},
	{Suspended, Running, "resume"},
	{Running, Terminating, "terminate"},
	{Suspended, Terminating, "terminate"},
	{Terminating, Terminated, "exit"},
	{Running, Terminated, "return"},
}

// CanTransition reports whether from -> to is a permitted lifecycle edge.
func CanTransition(from, to State) bool {
	for _, e := range Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}
