package primitives

import "time"

// TransitionEvent records one lifecycle transition of a thread.
//
// Events are value types; consumers must not mutate them after receipt.
type TransitionEvent struct {
	Thread    ThreadID  `json:"thread" yaml:"thread"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	From      State     `json:"from" yaml:"from"`
	To        State     `json:"to" yaml:"to"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewTransitionEvent stamps a transition with the current time.
func NewTransitionEvent(id ThreadID, name string, from, to State) TransitionEvent {
	return TransitionEvent{
		Thread:    id,
		Name:      name,
		From:      from,
		To:        to,
		Timestamp: time.Now(),
	}
}

// Label returns the edge label for the transition, or "" if the edge is not permitted.
func (e TransitionEvent) Label() string {
	for _, edge := range Edges {
		if edge.From == e.From && edge.To == e.To {
			return edge.Label
		}
	}
	return ""
}
