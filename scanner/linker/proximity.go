package linker

import (
	"sort"
	"strconv"

	"github.com/flowlens/flowlens/scanner/graph"
)

// Default proximity windows in lines. UI trigger to HTTP call pairs
// get a wider window since a handler body is conventionally declared
// well below the element wiring it.
const (
	DefaultWindow   = 50
	DefaultUIWindow = 100
)

// ProximityLinker chains operations within the same file when they
// sit close enough in line order. At most one proximity edge of a
// given semantic label originates from any single node: only the
// nearest qualifying successor is linked, keeping dense files from
// exploding into edge soup. Cross-file proximity is deliberately not
// attempted; route matching is the only cross-file mechanism, a known
// recall limitation of the heuristic.
type ProximityLinker struct {
	window   int
	uiWindow int
}

// NewProximityLinker creates a proximity linker; non-positive windows
// fall back to the defaults
func NewProximityLinker(window, uiWindow int) *ProximityLinker {
	if window <= 0 {
		window = DefaultWindow
	}
	if uiWindow <= 0 {
		uiWindow = DefaultUIWindow
	}
	return &ProximityLinker{window: window, uiWindow: uiWindow}
}

func (l *ProximityLinker) Name() string {
	return "proximity"
}

func (l *ProximityLinker) Link(g *graph.WorkflowGraph) int {
	added := 0
	maxWindow := l.window
	if l.uiWindow > maxWindow {
		maxWindow = l.uiWindow
	}

	for _, nodes := range g.NodesByFile() {
		ordered := make([]*graph.WorkflowNode, len(nodes))
		copy(ordered, nodes)
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].Location.LineNumber != ordered[j].Location.LineNumber {
				return ordered[i].Location.LineNumber < ordered[j].Location.LineNumber
			}
			return ordered[i].ID < ordered[j].ID
		})

		for i, a := range ordered {
			linked := map[string]bool{}
			for _, b := range ordered[i+1:] {
				delta := b.Location.LineNumber - a.Location.LineNumber
				if delta <= 0 {
					continue
				}
				if delta > maxWindow {
					break
				}
				if delta > l.windowFor(a.Type, b.Type) {
					continue
				}
				label := PairLabel(a.Type, b.Type)
				if linked[label] {
					continue
				}
				edge := &graph.WorkflowEdge{
					Source:   a.ID,
					Target:   b.ID,
					Label:    label,
					EdgeType: graph.EdgeProximity,
					Metadata: map[string]string{"distance": strconv.Itoa(delta)},
				}
				if g.AddEdge(edge) {
					added++
				}
				linked[label] = true
			}
		}
	}
	return added
}

func (l *ProximityLinker) windowFor(a, b graph.OperationType) int {
	if a == graph.UITrigger && b == graph.HTTPCall {
		return l.uiWindow
	}
	return l.window
}
