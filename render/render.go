// Package render turns a workflow graph into diagram text. Every
// format is a pure transformation of the same filtered node/edge
// subset; adding a format never touches detection, linking or
// assembly.
package render

import (
	"fmt"

	"github.com/flowlens/flowlens/scanner/graph"
)

// Format selects the output notation
type Format string

const (
	FormatMermaid  Format = "mermaid"
	FormatDOT      Format = "dot"
	FormatPlantUML Format = "plantuml"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatMermaid, FormatDOT, FormatPlantUML, FormatJSON, FormatHTML:
		return Format(name), nil
	}
	return "", fmt.Errorf("unknown format %q (want mermaid, dot, plantuml, json or html)", name)
}

// default node budgets per format, used when Options.MaxNodes is zero
var defaultBudgets = map[Format]int{
	FormatMermaid:  50,
	FormatDOT:      100,
	FormatPlantUML: 50,
	FormatHTML:     150,
}

// Options configures one rendering pass
type Options struct {
	Format   Format
	Filter   Filter
	MaxNodes int
}

// subset is the filtered, possibly truncated view handed to the
// per-format emitters
type subset struct {
	nodes   []*graph.WorkflowNode
	edges   []*graph.WorkflowEdge
	omitted int
}

// Render produces diagram text for the scan result. The source graph
// is never mutated; filtering and truncation build a derived subset.
// Truncation keeps insertion order and is always signaled in the
// output, nodes are never dropped silently.
func Render(result *graph.ScanResult, options Options) (string, error) {
	if result == nil || result.WorkflowGraph == nil {
		return "", fmt.Errorf("nothing to render: empty scan result")
	}
	format := options.Format
	if format == "" {
		format = FormatMermaid
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}

	sub := options.Filter.apply(result.WorkflowGraph)

	budget := options.MaxNodes
	if budget <= 0 {
		budget = defaultBudgets[format]
	}
	if budget > 0 && len(sub.nodes) > budget {
		sub = truncate(sub, budget)
	}

	switch format {
	case FormatMermaid:
		return renderMermaid(sub), nil
	case FormatDOT:
		return renderDOT(sub), nil
	case FormatPlantUML:
		return renderPlantUML(sub), nil
	case FormatJSON:
		return renderJSON(result, sub)
	case FormatHTML:
		return renderHTML(result, sub)
	}
	return "", fmt.Errorf("unknown format %q", format)
}

// truncate keeps the first budget nodes in insertion order and drops
// every edge that loses an endpoint
func truncate(sub subset, budget int) subset {
	kept := sub.nodes[:budget]
	keptIDs := make(map[string]bool, budget)
	for _, node := range kept {
		keptIDs[node.ID] = true
	}
	var edges []*graph.WorkflowEdge
	for _, edge := range sub.edges {
		if keptIDs[edge.Source] && keptIDs[edge.Target] {
			edges = append(edges, edge)
		}
	}
	return subset{
		nodes:   kept,
		edges:   edges,
		omitted: len(sub.nodes) - budget,
	}
}
