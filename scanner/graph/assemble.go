package graph

import "sort"

// FileOperations pairs a scanned file with the operations a detector
// produced for it
type FileOperations struct {
	FilePath   string
	Operations []Operation
}

// NodeFromOperation converts a detector operation into its
// graph-resident form with a deterministic id
func NodeFromOperation(filePath string, op Operation) *WorkflowNode {
	return &WorkflowNode{
		ID:          NodeID(filePath, op.Type, op.Line),
		Type:        op.Type,
		Name:        op.Name,
		Description: op.Description,
		Location: CodeLocation{
			FilePath:   filePath,
			LineNumber: op.Line,
		},
		TableName:  op.TableName,
		Query:      op.Query,
		Endpoint:   op.Endpoint,
		HTTPMethod: op.HTTPMethod,
		QueueName:  op.QueueName,
		TargetPath: op.TargetPath,
		Snippet:    op.Snippet,
		Metadata:   op.Metadata,
	}
}

// Assemble folds per-file operations into a deduplicated graph.
// When two detectors report the same (file, type, line) the first
// operation wins and the duplicate is discarded.
func Assemble(files []FileOperations) *WorkflowGraph {
	g := NewWorkflowGraph()
	for _, file := range files {
		for _, op := range file.Operations {
			g.AddNode(NodeFromOperation(file.FilePath, op))
		}
	}
	return g
}

// AssignWorkflows groups linked nodes into workflow chains. Every
// ui_trigger roots a chain; the nodes reachable from it get the root's
// workflow id and step numbers in (file, line) order. A node claimed
// by an earlier chain is not renumbered.
func AssignWorkflows(g *WorkflowGraph) {
	roots := g.NodesOfType(UITrigger)
	sort.Slice(roots, func(i, j int) bool {
		return nodeLess(roots[i], roots[j])
	})
	claimed := make(map[string]bool)
	for _, root := range roots {
		if claimed[root.ID] {
			continue
		}
		members := reachable(g, root.ID)
		sort.Slice(members, func(i, j int) bool {
			return nodeLess(members[i], members[j])
		})
		workflowID := "wf-" + root.ID
		step := 0
		for _, node := range members {
			if claimed[node.ID] {
				continue
			}
			claimed[node.ID] = true
			step++
			node.WorkflowID = workflowID
			node.StepNumber = step
		}
	}
}

func nodeLess(a, b *WorkflowNode) bool {
	if a.Location.FilePath != b.Location.FilePath {
		return a.Location.FilePath < b.Location.FilePath
	}
	if a.Location.LineNumber != b.Location.LineNumber {
		return a.Location.LineNumber < b.Location.LineNumber
	}
	return a.ID < b.ID
}

func reachable(g *WorkflowGraph, rootID string) []*WorkflowNode {
	seen := map[string]bool{rootID: true}
	queue := []string{rootID}
	var out []*WorkflowNode
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if node := g.Node(id); node != nil {
			out = append(out, node)
		}
		for _, edge := range g.Outgoing(id) {
			if !seen[edge.Target] {
				seen[edge.Target] = true
				queue = append(queue, edge.Target)
			}
		}
	}
	return out
}
