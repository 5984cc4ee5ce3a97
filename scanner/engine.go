package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/flowlens/flowlens/scanner/angular"
	"github.com/flowlens/flowlens/scanner/csharp"
	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/scanner/linker"
	"github.com/flowlens/flowlens/scanner/react"
	"github.com/flowlens/flowlens/scanner/typescript"
	"github.com/flowlens/flowlens/scanner/wpf"
)

// ProgressFunc is invoked after each file completes. It may be slow
// or blocking; the engine performs no other I/O around it.
type ProgressFunc func(filesDone, filesTotal, nodesSoFar int)

// Options configures a single scan invocation
type Options struct {
	Root              string
	IncludeExtensions []string
	ExcludeDirs       []string
	ExcludePatterns   []string
	Detect            DetectFlags
	ProximityWindow   int
	UIWindow          int
	Progress          ProgressFunc
}

// DefaultExcludeDirs are directory names skipped during discovery on
// top of any caller-supplied exclusions
var DefaultExcludeDirs = []string{
	"node_modules", "bin", "obj", "dist", "build", "out",
	"packages", "vendor", "__pycache__", ".git",
}

// Engine runs workflow discovery scans. Detection is embarrassingly
// parallel across files; linking and assembly run single-threaded on
// the merged view.
type Engine struct {
	registry *Registry
	linkers  []linker.Linker
	fs       afs.Service
	workers  int
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithWorkers sets the detection worker pool size
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRegistry replaces the default dialect detector registry
func WithRegistry(r *Registry) EngineOption {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLinkers replaces the default linker chain
func WithLinkers(linkers ...linker.Linker) EngineOption {
	return func(e *Engine) {
		e.linkers = linkers
	}
}

// DefaultRegistry returns the closed list of dialect detectors
func DefaultRegistry() *Registry {
	return NewRegistry(
		csharp.New(),
		typescript.New(),
		react.New(),
		angular.New(),
		wpf.New(),
	)
}

// NewEngine creates an engine with the default dialect registry and
// linker chain
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		registry: DefaultRegistry(),
		linkers:  nil,
		fs:       afs.New(),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type fileOutcome struct {
	path       string
	relPath    string
	operations []graph.Operation
	warnings   []graph.Warning
	err        error
}

// Scan discovers files under the root, runs every recognizing
// detector over each of them in parallel, links the merged operations
// and returns the frozen result. Per-file failures are recovered into
// the result's error list; the only fatal condition is a root that
// cannot be enumerated at all, which still yields a degenerate result
// rather than an error. The returned error is non-nil only when the
// context is cancelled.
func (e *Engine) Scan(ctx context.Context, options Options) (*graph.ScanResult, error) {
	started := time.Now()
	result := graph.NewScanResult(options.Root)

	files, err := e.discover(options)
	if err != nil {
		result.AddError(fmt.Sprintf("cannot enumerate root %s: %v", options.Root, err))
		result.Finish(started)
		return result, nil
	}

	outcomes := make(chan fileOutcome, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)

	go func() {
		for _, file := range files {
			file := file
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				outcomes <- e.scanFile(groupCtx, options.Root, file)
				return nil
			})
		}
		// the channel is sized for every file, Wait cannot block on it
		_ = group.Wait()
		close(outcomes)
	}()

	var fileOps []graph.FileOperations
	// operations folding onto the same node must not inflate the
	// reported node count
	seenNodes := make(map[string]bool)
	done := 0
	scanned := 0
	for outcome := range outcomes {
		done++
		if outcome.err != nil {
			result.AddError(fmt.Sprintf("%s: %v", outcome.relPath, outcome.err))
		} else {
			scanned++
			kept := filterOperations(outcome.operations, options.Detect)
			for _, op := range kept {
				seenNodes[graph.NodeID(outcome.relPath, op.Type, op.Line)] = true
			}
			fileOps = append(fileOps, graph.FileOperations{
				FilePath:   outcome.relPath,
				Operations: kept,
			})
			result.Warnings = append(result.Warnings, outcome.warnings...)
		}
		if options.Progress != nil {
			options.Progress(done, len(files), len(seenNodes))
		}
	}
	if err := ctx.Err(); err != nil {
		result.Finish(started)
		return result, err
	}

	// linking needs a complete, deterministically ordered view
	sort.Slice(fileOps, func(i, j int) bool {
		return fileOps[i].FilePath < fileOps[j].FilePath
	})
	assembled := graph.Assemble(fileOps)
	result.WorkflowGraph = assembled

	for _, l := range e.linkerChain(options) {
		l.Link(assembled)
	}
	graph.AssignWorkflows(assembled)

	result.FilesScanned = scanned
	result.Finish(started)
	return result, nil
}

func (e *Engine) linkerChain(options Options) []linker.Linker {
	if e.linkers != nil {
		return e.linkers
	}
	return []linker.Linker{
		linker.NewRouteLinker(),
		linker.NewProximityLinker(options.ProximityWindow, options.UIWindow),
	}
}

// scanFile reads one file and runs every recognizing detector over
// it. A panicking detector is treated as a per-file failure, never a
// scan abort.
func (e *Engine) scanFile(ctx context.Context, root, path string) (outcome fileOutcome) {
	outcome.path = path
	outcome.relPath = relativePath(root, path)

	defer func() {
		if r := recover(); r != nil {
			outcome.err = fmt.Errorf("detector panic: %v", r)
			outcome.operations = nil
			outcome.warnings = nil
		}
	}()

	content, err := e.readFile(ctx, path)
	if err != nil {
		outcome.err = err
		return outcome
	}
	for _, detector := range e.registry.For(path) {
		ops, warnings := detector.Detect(outcome.relPath, content)
		outcome.operations = append(outcome.operations, ops...)
		outcome.warnings = append(outcome.warnings, warnings...)
	}
	return outcome
}

func (e *Engine) readFile(ctx context.Context, path string) ([]byte, error) {
	if data, err := e.fs.DownloadWithURL(ctx, path); err == nil {
		return data, nil
	}
	return os.ReadFile(path)
}

// discover walks the root and returns the files the registry can
// scan, honoring extension and exclusion rules. Dot-directories are
// always skipped.
func (e *Engine) discover(options Options) ([]string, error) {
	info, err := os.Stat(options.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{options.Root}, nil
	}

	excluded := map[string]bool{}
	for _, dir := range DefaultExcludeDirs {
		excluded[dir] = true
	}
	for _, dir := range options.ExcludeDirs {
		excluded[dir] = true
	}

	extensions := options.IncludeExtensions
	if len(extensions) == 0 {
		extensions = e.registry.Extensions()
	}

	var files []string
	err = filepath.WalkDir(options.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != options.Root && (excluded[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !HasExtension(path, extensions) {
			return nil
		}
		for _, pattern := range options.ExcludePatterns {
			if ok, _ := filepath.Match(pattern, name); ok {
				return nil
			}
		}
		if len(e.registry.For(path)) == 0 {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func filterOperations(ops []graph.Operation, flags DetectFlags) []graph.Operation {
	var kept []graph.Operation
	for _, op := range ops {
		if flags.Enabled(op.Type) {
			kept = append(kept, op)
		}
	}
	return kept
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
