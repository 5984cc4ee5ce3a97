// Package scanner implements the workflow discovery engine: dialect
// detectors extract candidate operations from raw source text, the
// linker infers directed edges between them, and the assembler folds
// everything into a deduplicated workflow graph.
package scanner

import (
	"path/filepath"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
)

// Detector extracts candidate workflow operations from a single file.
// Implementations are stateless and pure with respect to their input;
// they never read other files or keep cross-call state.
type Detector interface {
	// Name identifies the dialect, e.g. "csharp"
	Name() string

	// Recognizes reports whether the detector applies to the file.
	// Several detectors may recognize the same file.
	Recognizes(path string) bool

	// Detect scans raw file content and returns candidate operations
	// with 1-based line numbers. Malformed input never fails; a
	// non-matching line simply yields nothing.
	Detect(path string, content []byte) ([]graph.Operation, []graph.Warning)
}

// DetectFlags enables or disables detection categories. UI triggers
// are always detected since they root workflow chains.
type DetectFlags struct {
	Database   bool `yaml:"database" json:"database"`
	API        bool `yaml:"api" json:"api"`
	Files      bool `yaml:"files" json:"files"`
	Messages   bool `yaml:"messages" json:"messages"`
	Transforms bool `yaml:"transforms" json:"transforms"`
}

// DefaultDetectFlags enables every category except transform and
// cache tracking, which tend to be noisy on frontend-heavy trees
func DefaultDetectFlags() DetectFlags {
	return DetectFlags{
		Database: true,
		API:      true,
		Files:    true,
		Messages: true,
	}
}

// Enabled reports whether operations of the given type should be kept
func (f DetectFlags) Enabled(opType graph.OperationType) bool {
	switch opType {
	case graph.UITrigger:
		return true
	case graph.HTTPCall, graph.HTTPRoute:
		return f.API
	case graph.DBRead, graph.DBWrite:
		return f.Database
	case graph.FileRead, graph.FileWrite:
		return f.Files
	case graph.MessageSend, graph.MessageReceive:
		return f.Messages
	case graph.DataTransform, graph.CacheRead, graph.CacheWrite:
		return f.Transforms
	}
	return false
}

// Registry holds the closed list of dialect detectors and selects the
// ones applying to a given file
type Registry struct {
	detectors []Detector
}

// NewRegistry creates a registry over an explicit detector list
func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

// Detectors returns the registered detectors
func (r *Registry) Detectors() []Detector {
	return r.detectors
}

// For returns every registered detector recognizing the file
func (r *Registry) For(path string) []Detector {
	var out []Detector
	for _, d := range r.detectors {
		if d.Recognizes(path) {
			out = append(out, d)
		}
	}
	return out
}

// Extensions returns the sorted union of extensions claimed by the
// registered detectors, probing a set of well-known ones
func (r *Registry) Extensions() []string {
	known := []string{".cs", ".cshtml", ".ts", ".tsx", ".js", ".jsx", ".html", ".xaml"}
	var out []string
	for _, ext := range known {
		if len(r.For("probe"+ext)) > 0 {
			out = append(out, ext)
		}
	}
	return out
}

// HasExtension reports whether the path carries one of the given
// extensions (case-insensitive). An empty list accepts everything.
func HasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	// code-behind files keep their compound suffix meaningful
	if strings.HasSuffix(strings.ToLower(path), ".xaml.cs") {
		ext = ".cs"
	}
	for _, candidate := range extensions {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}
