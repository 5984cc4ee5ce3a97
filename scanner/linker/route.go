package linker

import (
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
)

// RouteLinker matches outbound HTTP calls to inbound route handlers
// by method and path template. These are the only cross-file,
// distance-unbounded edges in the graph.
type RouteLinker struct{}

// NewRouteLinker creates a route matching linker
func NewRouteLinker() *RouteLinker {
	return &RouteLinker{}
}

func (l *RouteLinker) Name() string {
	return "route"
}

func (l *RouteLinker) Link(g *graph.WorkflowGraph) int {
	calls := g.NodesOfType(graph.HTTPCall)
	routes := g.NodesOfType(graph.HTTPRoute)
	added := 0
	for _, call := range calls {
		for _, route := range routes {
			if !methodsMatch(call.HTTPMethod, route.HTTPMethod) {
				continue
			}
			if !MatchRoute(call.Endpoint, route.Endpoint) {
				continue
			}
			edge := &graph.WorkflowEdge{
				Source:   call.ID,
				Target:   route.ID,
				Label:    LabelRouteMatch,
				EdgeType: graph.EdgeRouteMatch,
				Metadata: map[string]string{
					"method": route.HTTPMethod,
					"route":  route.Endpoint,
				},
			}
			if g.AddEdge(edge) {
				added++
			}
		}
	}
	return added
}

func methodsMatch(callMethod, routeMethod string) bool {
	if callMethod == "" || routeMethod == "" {
		return false
	}
	return strings.EqualFold(callMethod, routeMethod)
}

// MatchRoute reports whether a concrete call path matches a backend
// route template. After splitting on "/" both must have the same
// segment count and every template segment must either equal the call
// segment or be a parameter placeholder such as :id or {id}.
func MatchRoute(callPath, template string) bool {
	callSegments := pathSegments(callPath)
	templateSegments := pathSegments(template)
	if len(callSegments) == 0 || len(callSegments) != len(templateSegments) {
		return false
	}
	for i, ts := range templateSegments {
		if isPlaceholder(ts) {
			continue
		}
		if !strings.EqualFold(ts, callSegments[i]) {
			return false
		}
	}
	return true
}

// pathSegments normalizes a path or full URL to its slash-separated
// segments, dropping scheme, host, query string and fragment
func pathSegments(path string) []string {
	if idx := strings.Index(path, "://"); idx >= 0 {
		rest := path[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			path = rest[slash:]
		} else {
			path = "/"
		}
	}
	for _, sep := range []string{"?", "#"} {
		if idx := strings.Index(path, sep); idx >= 0 {
			path = path[:idx]
		}
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func isPlaceholder(segment string) bool {
	if strings.HasPrefix(segment, ":") && len(segment) > 1 {
		return true
	}
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}
