package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/scanner/graph"
)

func sampleResult(nodeCount int) *graph.ScanResult {
	result := graph.NewScanResult("/repo")
	result.ScanID = "scan-fixture"
	var previous *graph.WorkflowNode
	for i := 0; i < nodeCount; i++ {
		opType := graph.AllTypes[i%len(graph.AllTypes)]
		node := result.AddNode(&graph.WorkflowNode{
			ID:   graph.NodeID(fmt.Sprintf("src/file%d.ts", i/4), opType, 10+i),
			Type: opType,
			Name: fmt.Sprintf("op %d", i),
			Location: graph.CodeLocation{
				FilePath:   fmt.Sprintf("src/file%d.ts", i/4),
				LineNumber: 10 + i,
			},
		})
		if previous != nil {
			result.AddEdge(&graph.WorkflowEdge{
				Source:   previous.ID,
				Target:   node.ID,
				Label:    "step",
				EdgeType: graph.EdgeProximity,
			})
		}
		previous = node
	}
	return result
}

func TestTruncationSignaling(t *testing.T) {
	result := sampleResult(120)

	testCases := []struct {
		format Format
		marker string
	}{
		{FormatMermaid, "%% truncated: 70 nodes omitted"},
		{FormatDOT, "// truncated: 70 nodes omitted"},
		{FormatPlantUML, "' truncated: 70 nodes omitted"},
		{FormatJSON, `"truncated_nodes": 70`},
		{FormatHTML, "<!-- truncated: 70 nodes omitted -->"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			out, err := Render(result, Options{Format: tc.format, MaxNodes: 50})
			require.NoError(t, err)
			assert.Contains(t, out, tc.marker)
			if tc.format == FormatHTML {
				assert.Contains(t, out, `<div id="truncated">truncated: 70 nodes omitted</div>`)
			}
		})
	}
}

func TestTruncationKeepsExactlyBudget(t *testing.T) {
	result := sampleResult(120)
	out, err := Render(result, Options{Format: FormatJSON, MaxNodes: 50})
	require.NoError(t, err)

	var doc struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Nodes, 50)
}

func TestMermaidOutput(t *testing.T) {
	result := sampleResult(4)
	out, err := Render(result, Options{Format: FormatMermaid})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, "N0[")
	assert.Contains(t, out, "style N0 fill:"+ColorFor(graph.UITrigger))
	assert.Contains(t, out, `-->|"step"|`)
	assert.NotContains(t, out, "truncated")
}

func TestDOTOutput(t *testing.T) {
	result := sampleResult(3)
	out, err := Render(result, Options{Format: FormatDOT})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph workflow {"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `fillcolor`)
	assert.Contains(t, out, `n0 -> n1 [label="step"]`)
}

func TestPlantUMLOutput(t *testing.T) {
	result := sampleResult(3)
	out, err := Render(result, Options{Format: FormatPlantUML})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "@startuml\n"))
	assert.True(t, strings.HasSuffix(out, "@enduml\n"))
	assert.Contains(t, out, "op0 --> op1 : step")
}

func TestHTMLOutputIsSelfContained(t *testing.T) {
	result := sampleResult(5)
	out, err := Render(result, Options{Format: FormatHTML})
	require.NoError(t, err)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "scan-fixture")
	assert.NotContains(t, out, "http://cdn", "no external assets")
	assert.NotContains(t, out, "https://cdn", "no external assets")
}

func TestFilterByModule(t *testing.T) {
	result := graph.NewScanResult("/repo")
	inModule := result.AddNode(&graph.WorkflowNode{
		ID: "a", Type: graph.HTTPCall,
		Location: graph.CodeLocation{FilePath: "web/src/app.ts", LineNumber: 1},
	})
	result.AddNode(&graph.WorkflowNode{
		ID: "b", Type: graph.HTTPRoute,
		Location: graph.CodeLocation{FilePath: "api/Controllers/C.cs", LineNumber: 1},
	})
	result.AddEdge(&graph.WorkflowEdge{Source: "a", Target: "b", Label: "matched route"})

	sub := Filter{Module: "web/"}.apply(result.WorkflowGraph)
	require.Len(t, sub.nodes, 1)
	assert.Equal(t, inModule.ID, sub.nodes[0].ID)
	assert.Empty(t, sub.edges, "edges crossing out of the subset are dropped")
}

func TestFilterByTableWithNeighbors(t *testing.T) {
	result := graph.NewScanResult("/repo")
	result.AddNode(&graph.WorkflowNode{
		ID: "route", Type: graph.HTTPRoute,
		Location: graph.CodeLocation{FilePath: "api/C.cs", LineNumber: 4},
	})
	result.AddNode(&graph.WorkflowNode{
		ID: "write", Type: graph.DBWrite, TableName: "Orders",
		Location: graph.CodeLocation{FilePath: "api/C.cs", LineNumber: 9},
	})
	result.AddNode(&graph.WorkflowNode{
		ID: "unrelated", Type: graph.FileRead,
		Location: graph.CodeLocation{FilePath: "api/Other.cs", LineNumber: 2},
	})
	result.AddEdge(&graph.WorkflowEdge{Source: "route", Target: "write", Label: "API Endpoint → Database Write"})

	sub := Filter{Table: "Orders"}.apply(result.WorkflowGraph)
	require.Len(t, sub.nodes, 1)

	sub = Filter{Table: "Orders", Neighbors: true}.apply(result.WorkflowGraph)
	require.Len(t, sub.nodes, 2)
	assert.Len(t, sub.edges, 1)
}

func TestFilterByEndpointIsExact(t *testing.T) {
	result := graph.NewScanResult("/repo")
	result.AddNode(&graph.WorkflowNode{
		ID: "a", Type: graph.HTTPCall, Endpoint: "/api/orders",
		Location: graph.CodeLocation{FilePath: "w.ts", LineNumber: 1},
	})
	result.AddNode(&graph.WorkflowNode{
		ID: "b", Type: graph.HTTPCall, Endpoint: "/api/orders/recent",
		Location: graph.CodeLocation{FilePath: "w.ts", LineNumber: 9},
	})

	sub := Filter{Endpoint: "/api/orders"}.apply(result.WorkflowGraph)
	require.Len(t, sub.nodes, 1)
	assert.Equal(t, "a", sub.nodes[0].ID)
}

func TestFilteringNeverMutatesSource(t *testing.T) {
	result := sampleResult(20)
	nodesBefore := len(result.Nodes)
	edgesBefore := len(result.Edges)

	_, err := Render(result, Options{Format: FormatMermaid, MaxNodes: 5, Filter: Filter{Module: "src/"}})
	require.NoError(t, err)

	assert.Equal(t, nodesBefore, len(result.Nodes))
	assert.Equal(t, edgesBefore, len(result.Edges))
}

func TestColorFunctionIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, opType := range graph.AllTypes {
		color := ColorFor(opType)
		assert.True(t, strings.HasPrefix(color, "#"), "type %s must have a color", opType)
		seen[color] = true
	}
	assert.Len(t, seen, len(graph.AllTypes), "colors are distinct per type")
	assert.Equal(t, defaultColor, ColorFor(graph.OperationType("mystery")))
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"mermaid", "dot", "plantuml", "json", "html"} {
		format, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), format)
	}
	_, err := ParseFormat("svg")
	assert.Error(t, err)
}
