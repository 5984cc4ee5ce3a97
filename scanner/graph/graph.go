package graph

// WorkflowGraph holds deduplicated workflow nodes and the directed
// edges inferred between them. Nodes are unique by id; the edge list
// is a multigraph, parallel edges with distinct labels are allowed
// but (source, target, label) triples are never repeated.
type WorkflowGraph struct {
	Nodes []*WorkflowNode `json:"nodes"`
	Edges []*WorkflowEdge `json:"edges"`

	nodeIndex map[string]int
	edgeSeen  map[string]bool
}

// NewWorkflowGraph creates an empty workflow graph
func NewWorkflowGraph() *WorkflowGraph {
	return &WorkflowGraph{
		nodeIndex: make(map[string]int),
		edgeSeen:  make(map[string]bool),
	}
}

func (g *WorkflowGraph) ensureIndex() {
	if g.nodeIndex != nil {
		return
	}
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, node := range g.Nodes {
		g.nodeIndex[node.ID] = i
	}
	g.edgeSeen = make(map[string]bool, len(g.Edges))
	for _, edge := range g.Edges {
		g.edgeSeen[edgeKey(edge)] = true
	}
}

func edgeKey(e *WorkflowEdge) string {
	return e.Source + "\x00" + e.Target + "\x00" + e.Label
}

// AddNode inserts a node unless its id is already present. It returns
// the resident node, which is the previously inserted one on a
// duplicate id (first detection wins).
func (g *WorkflowGraph) AddNode(node *WorkflowNode) *WorkflowNode {
	g.ensureIndex()
	if idx, ok := g.nodeIndex[node.ID]; ok {
		return g.Nodes[idx]
	}
	g.nodeIndex[node.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
	return node
}

// AddEdge inserts an edge. It refuses edges with a dangling endpoint
// and merges duplicates with the same source, target and label.
// Returns true when the edge was actually added.
func (g *WorkflowGraph) AddEdge(edge *WorkflowEdge) bool {
	g.ensureIndex()
	if _, ok := g.nodeIndex[edge.Source]; !ok {
		return false
	}
	if _, ok := g.nodeIndex[edge.Target]; !ok {
		return false
	}
	key := edgeKey(edge)
	if g.edgeSeen[key] {
		return false
	}
	g.edgeSeen[key] = true
	g.Edges = append(g.Edges, edge)
	return true
}

// Node returns the node with the given id, or nil
func (g *WorkflowGraph) Node(id string) *WorkflowNode {
	g.ensureIndex()
	if idx, ok := g.nodeIndex[id]; ok {
		return g.Nodes[idx]
	}
	return nil
}

// NodesOfType returns every node of the given operation type in
// insertion order
func (g *WorkflowGraph) NodesOfType(opType OperationType) []*WorkflowNode {
	var out []*WorkflowNode
	for _, node := range g.Nodes {
		if node.Type == opType {
			out = append(out, node)
		}
	}
	return out
}

// NodesByFile groups nodes by originating file path
func (g *WorkflowGraph) NodesByFile() map[string][]*WorkflowNode {
	byFile := make(map[string][]*WorkflowNode)
	for _, node := range g.Nodes {
		byFile[node.Location.FilePath] = append(byFile[node.Location.FilePath], node)
	}
	return byFile
}

// Outgoing returns the edges whose source is the given node id
func (g *WorkflowGraph) Outgoing(id string) []*WorkflowEdge {
	var out []*WorkflowEdge
	for _, edge := range g.Edges {
		if edge.Source == id {
			out = append(out, edge)
		}
	}
	return out
}
