package production

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/comalice/osalx/internal/primitives"
)

// DefaultVisualizer is the stdlib-only implementation of Visualizer.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the thread lifecycle graph,
// filling the current state.
func (v *DefaultVisualizer) ExportDOT(current primitives.State) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Lifecycle {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, s := range lifecycleStates() {
		renderState(&buf, s, s == current)
	}
	for _, edge := range primitives.Edges {
		buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", edge.From.String(), edge.To.String(), edge.Label))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// edgeJSON is the serialised form of one lifecycle edge.
type edgeJSON struct {
	From  primitives.State `json:"from"`
	To    primitives.State `json:"to"`
	Label string           `json:"label"`
}

// ExportJSON serializes the lifecycle edges to JSON.
func (v *DefaultVisualizer) ExportJSON() ([]byte, error) {
	edges := make([]edgeJSON, len(primitives.Edges))
	for i, e := range primitives.Edges {
		edges[i] = edgeJSON{From: e.From, To: e.To, Label: e.Label}
	}
	return json.MarshalIndent(edges, "", "  ")
}

// lifecycleStates returns every state in lifecycle order.
func lifecycleStates() []primitives.State {
	return []primitives.State{
		primitives.Initialized,
		primitives.Running,
		primitives.Suspended,
		primitives.Terminating,
		primitives.Terminated,
	}
}

func renderState(buf *bytes.Buffer, s primitives.State, active bool) {
	shape := ""
	if s.Final() {
		shape = " shape=doublecircle"
	}
	style := ""
	if active {
		style = " style=filled fillcolor=lightgreen"
	}
	buf.WriteString(fmt.Sprintf("  %q [label=%q%s%s];\n", s.String(), s.String(), shape, style))
}
