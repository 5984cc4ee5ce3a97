package graph

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ScanResult is the complete, immutable output of one scan
// invocation. Field names are the stable serialization schema and
// must not be renamed.
type ScanResult struct {
	ScanID         string `json:"scan_id"`
	RepositoryPath string `json:"repository_path"`
	FilesScanned   int    `json:"files_scanned"`

	*WorkflowGraph

	ScanTimeSeconds float64   `json:"scan_time_seconds"`
	Errors          []string  `json:"errors"`
	Warnings        []Warning `json:"warnings,omitempty"`
}

// NewScanResult creates an empty result for the given repository path
func NewScanResult(repositoryPath string) *ScanResult {
	return &ScanResult{
		ScanID:         uuid.NewString(),
		RepositoryPath: repositoryPath,
		WorkflowGraph:  NewWorkflowGraph(),
		Errors:         []string{},
	}
}

// AddError records a recovered per-file failure
func (r *ScanResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
}

// Finish freezes the result, stamping the scan duration and
// normalizing nil collections so the serialized form always carries
// arrays
func (r *ScanResult) Finish(started time.Time) {
	r.ScanTimeSeconds = time.Since(started).Seconds()
	if r.WorkflowGraph == nil {
		r.WorkflowGraph = NewWorkflowGraph()
	}
	if r.Nodes == nil {
		r.Nodes = []*WorkflowNode{}
	}
	if r.Edges == nil {
		r.Edges = []*WorkflowEdge{}
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
}

// MarshalResult serializes a result to indented JSON
func MarshalResult(result *ScanResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// UnmarshalResult parses a serialized scan result and rebuilds the
// graph lookup indexes
func UnmarshalResult(data []byte) (*ScanResult, error) {
	result := &ScanResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, err
	}
	if result.WorkflowGraph == nil {
		result.WorkflowGraph = NewWorkflowGraph()
	}
	result.WorkflowGraph.ensureIndex()
	return result, nil
}
