package render

import (
	"fmt"
	"strings"
)

// renderPlantUML emits a component-style PlantUML diagram
func renderPlantUML(sub subset) string {
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("!theme plain\n")
	b.WriteString("skinparam rectangleBorderColor #666666\n\n")

	ids := make(map[string]string, len(sub.nodes))
	for i, node := range sub.nodes {
		id := fmt.Sprintf("op%d", i)
		ids[node.ID] = id
		caption := strings.ReplaceAll(nodeCaption(node), `"`, "'")
		fmt.Fprintf(&b, "rectangle \"%s\" as %s %s\n", caption, id, ColorFor(node.Type))
	}
	b.WriteString("\n")
	for _, edge := range sub.edges {
		fmt.Fprintf(&b, "%s --> %s : %s\n", ids[edge.Source], ids[edge.Target], edge.Label)
	}
	if sub.omitted > 0 {
		fmt.Fprintf(&b, "' truncated: %d nodes omitted\n", sub.omitted)
	}
	b.WriteString("@enduml\n")
	return b.String()
}
