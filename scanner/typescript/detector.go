// Package typescript detects workflow operations in TypeScript and
// JavaScript sources: fetch/axios HTTP calls, Express and NestJS
// route declarations, browser storage access, file reads and RxJS
// transform pipelines.
package typescript

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/scanner/source"
)

// lines searched after a fetch( for a method: option
const methodLookahead = 3

var (
	fetchPattern = regexp.MustCompile(`\bfetch\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)`)
	axiosPattern = regexp.MustCompile(`axios\.(get|post|put|delete|patch)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)`)
	methodOption = regexp.MustCompile(`method\s*:\s*['"](\w+)['"]`)

	expressRoute = regexp.MustCompile(`\b(?:app|router)\.(get|post|put|delete|patch|all)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]\s*,`)
	nestRoute    = regexp.MustCompile(`@(Get|Post|Put|Delete|Patch)\s*\(\s*(?:['"]([^'"]*)['"])?\s*\)`)
	handlerName  = regexp.MustCompile(`(?:async\s+)?(?:function\s+)?(\w+)\s*\(`)

	cacheReadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(localStorage|sessionStorage)\.getItem\s*\(\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`(indexedDB)\.open\s*\(`),
	}
	cacheWritePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(localStorage|sessionStorage)\.(?:setItem|removeItem)\s*\(\s*['"]([^'"]+)['"]`),
	}

	fileReadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`new\s+FileReader\s*\(`),
		regexp.MustCompile(`\.readAs(?:Text|DataURL|ArrayBuffer|BinaryString)\s*\(`),
		regexp.MustCompile(`fs\.readFile(Sync)?\s*\(`),
	}
	fileWritePatterns = []*regexp.Regexp{
		regexp.MustCompile(`fs\.(?:writeFile|appendFile)(Sync)?\s*\(`),
		regexp.MustCompile(`new\s+Blob\s*\(`),
	}

	transformPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.pipe\s*\(`),
		regexp.MustCompile(`\.(switchMap|mergeMap|concatMap|debounceTime|distinctUntilChanged)\s*\(`),
		regexp.MustCompile(`\.(map|filter|reduce)\s*\(\s*\(`),
	}
)

// Detector scans TypeScript and JavaScript sources
type Detector struct{}

// New creates a TypeScript detector
func New() *Detector {
	return &Detector{}
}

func (d *Detector) Name() string {
	return "typescript"
}

func (d *Detector) Recognizes(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".jsx":
		return true
	}
	return false
}

func (d *Detector) Detect(path string, content []byte) ([]graph.Operation, []graph.Warning) {
	lines := source.Lines(content)
	var ops []graph.Operation

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		ops = append(ops, detectRoutes(lines, i)...)
		ops = append(ops, detectHTTPCalls(lines, i)...)
		ops = append(ops, detectStorage(lines, i)...)
		ops = append(ops, detectFileIO(lines, i)...)
		ops = append(ops, detectTransforms(lines, i)...)
	}
	return ops, nil
}

func detectRoutes(lines []string, i int) []graph.Operation {
	line := lines[i]
	if m := expressRoute.FindStringSubmatch(line); m != nil {
		method := strings.ToUpper(m[1])
		if method == "ALL" {
			method = ""
		}
		return []graph.Operation{{
			Type:        graph.HTTPRoute,
			Name:        strings.TrimSpace(method + " " + m[2]),
			Description: fmt.Sprintf("Handles %s %s", method, m[2]),
			Line:        i + 1,
			Endpoint:    m[2],
			HTTPMethod:  method,
			Snippet:     source.Snippet(lines, i),
			Metadata:    map[string]string{"framework": "express"},
		}}
	}
	if m := nestRoute.FindStringSubmatch(line); m != nil {
		method := strings.ToUpper(m[1])
		route := m[2]
		handler := ""
		if hm := handlerName.FindStringSubmatch(source.Lookahead(lines, i+1, 2)); hm != nil {
			handler = hm[1]
		}
		return []graph.Operation{{
			Type:        graph.HTTPRoute,
			Name:        strings.TrimSpace(method + " " + route),
			Description: fmt.Sprintf("Handles %s %s", method, route),
			Line:        i + 1,
			Endpoint:    route,
			HTTPMethod:  method,
			Snippet:     source.Snippet(lines, i),
			Metadata:    map[string]string{"framework": "nest", "handler": handler},
		}}
	}
	return nil
}

func detectHTTPCalls(lines []string, i int) []graph.Operation {
	line := lines[i]
	// route declarations also contain verbs, skip them
	if expressRoute.MatchString(line) {
		return nil
	}
	if m := axiosPattern.FindStringSubmatch(line); m != nil {
		method := strings.ToUpper(m[1])
		return []graph.Operation{httpCall(method, m[2], "axios", lines, i)}
	}
	if m := fetchPattern.FindStringSubmatch(line); m != nil {
		method := "GET"
		if opt := methodOption.FindStringSubmatch(source.Lookahead(lines, i, methodLookahead)); opt != nil {
			method = strings.ToUpper(opt[1])
		}
		return []graph.Operation{httpCall(method, m[1], "fetch", lines, i)}
	}
	return nil
}

func httpCall(method, endpoint, library string, lines []string, i int) graph.Operation {
	return graph.Operation{
		Type:        graph.HTTPCall,
		Name:        strings.TrimSpace(method + " " + endpoint),
		Description: "Outbound HTTP request via " + library,
		Line:        i + 1,
		Endpoint:    endpoint,
		HTTPMethod:  method,
		Snippet:     source.Snippet(lines, i),
		Metadata:    map[string]string{"library": library},
	}
}

func detectStorage(lines []string, i int) []graph.Operation {
	var ops []graph.Operation
	line := lines[i]
	for _, p := range cacheReadPatterns {
		if m := p.FindStringSubmatch(line); m != nil {
			ops = append(ops, cacheOperation(graph.CacheRead, m, lines, i))
			break
		}
	}
	for _, p := range cacheWritePatterns {
		if m := p.FindStringSubmatch(line); m != nil {
			ops = append(ops, cacheOperation(graph.CacheWrite, m, lines, i))
			break
		}
	}
	return ops
}

func cacheOperation(opType graph.OperationType, m []string, lines []string, i int) graph.Operation {
	store := m[1]
	key := ""
	if len(m) > 2 {
		key = m[2]
	}
	name := store
	if key != "" {
		name = store + ":" + key
	}
	verb := "read"
	if opType == graph.CacheWrite {
		verb = "write"
	}
	return graph.Operation{
		Type:        opType,
		Name:        name,
		Description: "Browser storage " + verb,
		Line:        i + 1,
		Snippet:     source.Snippet(lines, i),
		Metadata:    map[string]string{"store": store, "key": key},
	}
}

func detectFileIO(lines []string, i int) []graph.Operation {
	var ops []graph.Operation
	line := lines[i]
	for _, p := range fileReadPatterns {
		if m := p.FindString(line); m != "" {
			ops = append(ops, fileOperation(graph.FileRead, m, lines, i))
			break
		}
	}
	for _, p := range fileWritePatterns {
		if m := p.FindString(line); m != "" {
			ops = append(ops, fileOperation(graph.FileWrite, m, lines, i))
			break
		}
	}
	return ops
}

func fileOperation(opType graph.OperationType, matched string, lines []string, i int) graph.Operation {
	verb := "read"
	if opType == graph.FileWrite {
		verb = "write"
	}
	return graph.Operation{
		Type:        opType,
		Name:        source.Truncate(strings.TrimRight(matched, "( \t"), 60),
		Description: "File " + verb,
		Line:        i + 1,
		Snippet:     source.Snippet(lines, i),
	}
}

func detectTransforms(lines []string, i int) []graph.Operation {
	line := lines[i]
	for _, p := range transformPatterns {
		if m := p.FindString(line); m != "" {
			return []graph.Operation{{
				Type:        graph.DataTransform,
				Name:        source.Truncate(strings.Trim(m, ".( \t"), 40),
				Description: "Data transformation pipeline",
				Line:        i + 1,
				Snippet:     source.Snippet(lines, i),
			}}
		}
	}
	return nil
}
