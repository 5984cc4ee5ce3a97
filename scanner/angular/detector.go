// Package angular detects workflow operations in Angular projects:
// template event bindings like (click)="save()" in component
// templates, HttpClient calls and @Component declarations in
// component classes.
package angular

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/scanner/source"
)

var (
	bindingPattern = regexp.MustCompile(`\((click|dblclick|submit|ngSubmit|change|input|keyup|keydown|mousedown|blur|focus)\)\s*=\s*"([^"]+)"`)

	httpCallPattern = regexp.MustCompile(`this\.http\s*\.\s*(get|post|put|delete|patch)(?:<[^>]*>)?\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)`)

	// route config entries need a component on the same line to keep
	// arbitrary "path:" object keys out
	routePattern = regexp.MustCompile(`path\s*:\s*['"]([^'"]*)['"].*component\s*:\s*(\w+)`)

	componentAttr   = regexp.MustCompile(`@Component\s*\(`)
	selectorPattern = regexp.MustCompile(`selector\s*:\s*['"]([^'"]+)['"]`)
	classPattern    = regexp.MustCompile(`export\s+class\s+(\w+)`)
)

// selector lookahead after an @Component( decorator
const decoratorWindow = 6

// Detector scans Angular component classes and templates
type Detector struct{}

// New creates an Angular detector
func New() *Detector {
	return &Detector{}
}

func (d *Detector) Name() string {
	return "angular"
}

func (d *Detector) Recognizes(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".html":
		return true
	}
	return false
}

func (d *Detector) Detect(path string, content []byte) ([]graph.Operation, []graph.Warning) {
	lines := source.Lines(content)
	var ops []graph.Operation

	component := componentName(path, lines)

	for i, line := range lines {
		for _, m := range bindingPattern.FindAllStringSubmatch(line, -1) {
			event, handler := m[1], strings.TrimSpace(m[2])
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        "(" + event + "):" + handler,
				Description: "User " + event + " handled by " + handler + " in " + component,
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"component": component,
					"event":     event,
					"handler":   handler,
				},
			})
		}
		if m := routePattern.FindStringSubmatch(line); m != nil {
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        "route:" + m[1],
				Description: "Navigation to " + m[1] + " rendering " + m[2],
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"event":     "navigation",
					"route":     m[1],
					"component": m[2],
				},
			})
		}
		if m := httpCallPattern.FindStringSubmatch(line); m != nil {
			method := strings.ToUpper(m[1])
			ops = append(ops, graph.Operation{
				Type:        graph.HTTPCall,
				Name:        method + " " + m[2],
				Description: "Outbound HTTP request via HttpClient",
				Line:        i + 1,
				Endpoint:    m[2],
				HTTPMethod:  method,
				Snippet:     source.Snippet(lines, i),
				Metadata:    map[string]string{"library": "HttpClient", "component": component},
			})
		}
	}
	return ops, nil
}

// componentName resolves the component identity: the @Component
// selector when present, the exported class otherwise, the file base
// name as a last resort
func componentName(path string, lines []string) string {
	for i, line := range lines {
		if !componentAttr.MatchString(line) {
			continue
		}
		if m := selectorPattern.FindStringSubmatch(source.Lookahead(lines, i, decoratorWindow)); m != nil {
			return m[1]
		}
	}
	for _, line := range lines {
		if m := classPattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
