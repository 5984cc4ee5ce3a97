package render

import (
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
)

// Filter selects a subset of the graph before rendering. Criteria
// combine with AND; an empty filter keeps everything. With Neighbors
// set, nodes directly connected to a match are kept as well, which is
// how a single table or endpoint is viewed in context.
type Filter struct {
	Module    string // path prefix of the originating file
	Table     string // exact table name
	Endpoint  string // exact endpoint string
	Neighbors bool
}

func (f Filter) empty() bool {
	return f.Module == "" && f.Table == "" && f.Endpoint == ""
}

func (f Filter) matches(node *graph.WorkflowNode) bool {
	if f.Module != "" && !strings.HasPrefix(node.Location.FilePath, f.Module) {
		return false
	}
	if f.Table != "" && node.TableName != f.Table {
		return false
	}
	if f.Endpoint != "" && node.Endpoint != f.Endpoint {
		return false
	}
	return true
}

// apply derives the filtered node/edge subset, preserving the
// graph's insertion order
func (f Filter) apply(g *graph.WorkflowGraph) subset {
	if f.empty() {
		return subset{nodes: g.Nodes, edges: g.Edges}
	}

	selected := make(map[string]bool)
	for _, node := range g.Nodes {
		if f.matches(node) {
			selected[node.ID] = true
		}
	}
	if f.Neighbors {
		adjacent := make(map[string]bool)
		for _, edge := range g.Edges {
			if selected[edge.Source] {
				adjacent[edge.Target] = true
			}
			if selected[edge.Target] {
				adjacent[edge.Source] = true
			}
		}
		for id := range adjacent {
			selected[id] = true
		}
	}

	var nodes []*graph.WorkflowNode
	for _, node := range g.Nodes {
		if selected[node.ID] {
			nodes = append(nodes, node)
		}
	}
	var edges []*graph.WorkflowEdge
	for _, edge := range g.Edges {
		if selected[edge.Source] && selected[edge.Target] {
			edges = append(edges, edge)
		}
	}
	return subset{nodes: nodes, edges: edges}
}
