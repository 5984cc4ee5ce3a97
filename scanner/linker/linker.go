// Package linker infers directed edges between detected workflow
// operations. Two strategies exist: structural route matching between
// an outbound HTTP call and an inbound route handler, and same-file
// line proximity chaining. Both are heuristics; a future call-graph
// linker would require per-language symbol resolution and can be
// added behind the same interface without touching detectors or
// rendering.
package linker

import "github.com/flowlens/flowlens/scanner/graph"

// Linker adds inferred edges to an assembled graph and reports how
// many were added. Implementations never remove or mutate nodes.
type Linker interface {
	Name() string
	Link(g *graph.WorkflowGraph) int
}

// LabelRouteMatch marks an edge produced by route matching
const LabelRouteMatch = "matched route"

// pairLabels maps semantically meaningful type pairs to their edge
// labels; any other pair gets a generic label from the display names
var pairLabels = map[[2]graph.OperationType]string{
	{graph.UITrigger, graph.HTTPCall}:     "User Action → API Call",
	{graph.HTTPCall, graph.DBWrite}:       "Data Ingestion",
	{graph.DBRead, graph.DataTransform}:   "Data Processing",
	{graph.MessageReceive, graph.DBWrite}: "Message Ingestion",
}

// PairLabel returns the semantic label for a proximity edge between
// the two operation types
func PairLabel(a, b graph.OperationType) string {
	if label, ok := pairLabels[[2]graph.OperationType{a, b}]; ok {
		return label
	}
	return a.DisplayName() + " → " + b.DisplayName()
}

// Default returns the standard linker chain: route matching first,
// proximity chaining second. Order matters only for readability of
// the edge list; neither strategy short-circuits the other.
func Default() []Linker {
	return []Linker{
		NewRouteLinker(),
		NewProximityLinker(0, 0),
	}
}
