package render

import (
	"fmt"
	"strings"
)

// renderDOT emits a Graphviz digraph
func renderDOT(sub subset) string {
	var b strings.Builder
	b.WriteString("digraph workflow {\n")
	b.WriteString("    rankdir=TB;\n")
	b.WriteString("    node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];\n\n")

	ids := make(map[string]string, len(sub.nodes))
	for i, node := range sub.nodes {
		id := fmt.Sprintf("n%d", i)
		ids[node.ID] = id
		fmt.Fprintf(&b, "    %s [label=%q, fillcolor=%q];\n", id, nodeCaption(node), ColorFor(node.Type))
	}
	b.WriteString("\n")
	for _, edge := range sub.edges {
		fmt.Fprintf(&b, "    %s -> %s [label=%q];\n", ids[edge.Source], ids[edge.Target], edge.Label)
	}
	if sub.omitted > 0 {
		fmt.Fprintf(&b, "    // truncated: %d nodes omitted\n", sub.omitted)
	}
	b.WriteString("}\n")
	return b.String()
}
