// Package react detects UI interaction triggers in React components:
// JSX event handler bindings together with the enclosing component
// name. HTTP and storage detection for the same files is the generic
// typescript detector's job; both run and their outputs are merged.
package react

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/scanner/source"
)

type eventRule struct {
	pattern *regexp.Regexp
	event   string
}

var (
	eventRules = []eventRule{
		{regexp.MustCompile(`onClick\s*=\s*\{\s*([^}]+?)\s*\}`), "click"},
		{regexp.MustCompile(`onSubmit\s*=\s*\{\s*([^}]+?)\s*\}`), "submit"},
		{regexp.MustCompile(`onChange\s*=\s*\{\s*([^}]+?)\s*\}`), "change"},
		{regexp.MustCompile(`onInput\s*=\s*\{\s*([^}]+?)\s*\}`), "input"},
		{regexp.MustCompile(`onLoad\s*=\s*\{\s*([^}]+?)\s*\}`), "page_load"},
		{regexp.MustCompile(`onKeyDown\s*=\s*\{\s*([^}]+?)\s*\}`), "keydown"},
	}

	componentDecl = regexp.MustCompile(`(?:export\s+)?(?:default\s+)?(?:function|const|class)\s+([A-Z]\w*)`)
	useEffectHook = regexp.MustCompile(`useEffect\s*\(`)
	routeDecl     = regexp.MustCompile(`<Route\s[^>]*path\s*=\s*["']([^"']+)["']`)
)

// Detector scans React JSX and TSX sources
type Detector struct{}

// New creates a React detector
func New() *Detector {
	return &Detector{}
}

func (d *Detector) Name() string {
	return "react"
}

func (d *Detector) Recognizes(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsx", ".tsx":
		return true
	}
	return false
}

func (d *Detector) Detect(path string, content []byte) ([]graph.Operation, []graph.Warning) {
	lines := source.Lines(content)
	var ops []graph.Operation

	// the enclosing component is the most recent declaration seen
	component := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for i, line := range lines {
		if m := componentDecl.FindStringSubmatch(line); m != nil {
			component = m[1]
		}
		for _, rule := range eventRules {
			m := rule.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			handler := strings.TrimSpace(m[1])
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        "on" + titleCase(rule.event) + ":" + handler,
				Description: "User " + rule.event + " handled by " + handler + " in " + component,
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"component": component,
					"event":     rule.event,
					"handler":   handler,
				},
			})
		}
		if m := routeDecl.FindStringSubmatch(line); m != nil {
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        "route:" + m[1],
				Description: "Navigation to " + m[1],
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"event": "navigation",
					"route": m[1],
				},
			})
		}
		if useEffectHook.MatchString(line) {
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        "useEffect:" + component,
				Description: "Component effect in " + component,
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"component": component,
					"event":     "mount",
				},
			})
		}
	}
	return ops, nil
}

func titleCase(event string) string {
	if event == "" {
		return event
	}
	event = strings.ReplaceAll(event, "_", " ")
	parts := strings.Fields(event)
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}
