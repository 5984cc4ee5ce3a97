package render

import (
	"encoding/json"

	"github.com/flowlens/flowlens/scanner/graph"
)

// renderJSON emits the stable scan result schema with the filtered
// node and edge subset. A non-zero truncated_nodes field is the
// truncation indicator for this format.
func renderJSON(result *graph.ScanResult, sub subset) (string, error) {
	doc := struct {
		ScanID          string                `json:"scan_id"`
		RepositoryPath  string                `json:"repository_path"`
		FilesScanned    int                   `json:"files_scanned"`
		Nodes           []*graph.WorkflowNode `json:"nodes"`
		Edges           []*graph.WorkflowEdge `json:"edges"`
		ScanTimeSeconds float64               `json:"scan_time_seconds"`
		Errors          []string              `json:"errors"`
		TruncatedNodes  int                   `json:"truncated_nodes,omitempty"`
	}{
		ScanID:          result.ScanID,
		RepositoryPath:  result.RepositoryPath,
		FilesScanned:    result.FilesScanned,
		Nodes:           sub.nodes,
		Edges:           sub.edges,
		ScanTimeSeconds: result.ScanTimeSeconds,
		Errors:          result.Errors,
		TruncatedNodes:  sub.omitted,
	}
	if doc.Nodes == nil {
		doc.Nodes = []*graph.WorkflowNode{}
	}
	if doc.Edges == nil {
		doc.Edges = []*graph.WorkflowEdge{}
	}
	if doc.Errors == nil {
		doc.Errors = []string{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
