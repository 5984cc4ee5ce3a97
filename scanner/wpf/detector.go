// Package wpf detects desktop workflow operations in WPF
// applications: event wiring attributes in XAML markup, the matching
// handler methods in code-behind files and WebClient era HTTP calls
// that the generic C# detector does not cover.
package wpf

import (
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/scanner/source"
)

var (
	xamlEventPattern = regexp.MustCompile(`\b(Click|MouseDown|MouseUp|MouseDoubleClick|SelectionChanged|TextChanged|KeyDown|KeyUp|Loaded|Checked|Unchecked|PreviewMouseDown)\s*=\s*"(\w+)"`)
	xamlClassPattern = regexp.MustCompile(`x:Class\s*=\s*"([\w.]+)"`)
	xamlNamePattern  = regexp.MustCompile(`x:Name\s*=\s*"(\w+)"`)

	handlerPattern = regexp.MustCompile(`(?:private|protected|public|internal)\s+(?:async\s+)?void\s+(\w+)\s*\(\s*object\s+sender\s*,\s*\w*EventArgs`)

	webClientPattern = regexp.MustCompile(`\.(DownloadString|DownloadData|DownloadFile|UploadString|UploadData|UploadValues)(TaskAsync|Async)?\s*\(`)
	urlLiteral       = regexp.MustCompile(`"(https?://[^"]+|/[^"\s]*)"`)
)

// Detector scans XAML markup and its code-behind
type Detector struct{}

// New creates a WPF detector
func New() *Detector {
	return &Detector{}
}

func (d *Detector) Name() string {
	return "wpf"
}

func (d *Detector) Recognizes(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xaml") || strings.HasSuffix(lower, ".xaml.cs")
}

func (d *Detector) Detect(path string, content []byte) ([]graph.Operation, []graph.Warning) {
	if strings.HasSuffix(strings.ToLower(path), ".xaml") {
		return d.detectMarkup(content), nil
	}
	return d.detectCodeBehind(content), nil
}

// detectMarkup extracts event wiring attributes from XAML. The owning
// window or control class comes from the x:Class declaration at the
// document root.
func (d *Detector) detectMarkup(content []byte) []graph.Operation {
	lines := source.Lines(content)
	var ops []graph.Operation

	window := ""
	for _, line := range lines {
		if m := xamlClassPattern.FindStringSubmatch(line); m != nil {
			window = m[1]
			break
		}
	}

	for i, line := range lines {
		elementName := ""
		if nm := xamlNamePattern.FindStringSubmatch(line); nm != nil {
			elementName = nm[1]
		}
		for _, m := range xamlEventPattern.FindAllStringSubmatch(line, -1) {
			event, handler := m[1], m[2]
			name := event + ":" + handler
			if elementName != "" {
				name = elementName + "." + name
			}
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        name,
				Description: "User " + strings.ToLower(event) + " handled by " + handler,
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"component": window,
					"event":     strings.ToLower(event),
					"handler":   handler,
					"element":   elementName,
				},
			})
		}
	}
	return ops
}

// detectCodeBehind extracts the handler method definitions, which is
// where the chain to HTTP and database work actually starts, plus
// legacy WebClient calls
func (d *Detector) detectCodeBehind(content []byte) []graph.Operation {
	lines := source.Lines(content)
	var ops []graph.Operation

	for i, line := range lines {
		if m := handlerPattern.FindStringSubmatch(line); m != nil {
			ops = append(ops, graph.Operation{
				Type:        graph.UITrigger,
				Name:        m[1],
				Description: "Event handler " + m[1],
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
				Metadata: map[string]string{
					"handler": m[1],
					"event":   "handler",
				},
			})
		}
		if m := webClientPattern.FindStringSubmatch(line); m != nil {
			endpoint := ""
			if um := urlLiteral.FindStringSubmatch(source.Lookback(lines, i, 3)); um != nil {
				endpoint = um[1]
			}
			name := "WebClient." + m[1]
			if endpoint != "" {
				name = "GET " + endpoint
			}
			ops = append(ops, graph.Operation{
				Type:        graph.HTTPCall,
				Name:        name,
				Description: "Outbound HTTP request via WebClient",
				Line:        i + 1,
				Endpoint:    endpoint,
				HTTPMethod:  "GET",
				Snippet:     source.Snippet(lines, i),
				Metadata:    map[string]string{"library": "WebClient"},
			})
		}
	}
	return ops
}
