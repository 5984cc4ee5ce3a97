package render

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
)

// renderMermaid emits a top-down mermaid flowchart
func renderMermaid(sub subset) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	ids := make(map[string]string, len(sub.nodes))
	for i, node := range sub.nodes {
		id := fmt.Sprintf("N%d", i)
		ids[node.ID] = id
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", id, mermaidEscape(nodeCaption(node)))
		fmt.Fprintf(&b, "    style %s fill:%s\n", id, ColorFor(node.Type))
	}
	for _, edge := range sub.edges {
		fmt.Fprintf(&b, "    %s -->|\"%s\"| %s\n", ids[edge.Source], mermaidEscape(edge.Label), ids[edge.Target])
	}
	if sub.omitted > 0 {
		fmt.Fprintf(&b, "    %%%% truncated: %d nodes omitted\n", sub.omitted)
	}
	return b.String()
}

func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// nodeCaption is the display label shared by the diagram formats
func nodeCaption(node *graph.WorkflowNode) string {
	name := node.Name
	if name == "" {
		name = node.Type.DisplayName()
	}
	if len(name) > 48 {
		name = name[:48] + "..."
	}
	return fmt.Sprintf("%s (%s:%d)", name, baseName(node.Location.FilePath), node.Location.LineNumber)
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
