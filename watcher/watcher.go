// Package watcher triggers repository rescans when watched source
// files change, coalescing bursts of filesystem events through a
// debounce window.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flowlens/flowlens/scanner"
	"github.com/flowlens/flowlens/scanner/graph"
)

// Watcher watches a repository tree and reruns the scan engine after
// changes settle.
type Watcher struct {
	engine  *scanner.Engine
	options scanner.Options

	fsWatcher  *fsnotify.Watcher
	extensions []string

	// Debouncing
	debounceDelay time.Duration
	pendingFiles  map[string]struct{}
	pendingMu     sync.Mutex
	debounceTimer *time.Timer

	// Callbacks
	onScanStart func(files []string)
	onScanDone  func(result *graph.ScanResult, duration time.Duration)
	onError     func(error)

	// Control
	done chan struct{}
}

// Option configures the watcher
type Option func(*Watcher)

// WithDebounceDelay sets how long changes must settle before a rescan
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithOnScanStart sets the callback invoked when a rescan begins,
// receiving the files whose changes triggered it
func WithOnScanStart(fn func(files []string)) Option {
	return func(w *Watcher) {
		w.onScanStart = fn
	}
}

// WithOnScanDone sets the callback invoked when a rescan completes
func WithOnScanDone(fn func(result *graph.ScanResult, duration time.Duration)) Option {
	return func(w *Watcher) {
		w.onScanDone = fn
	}
}

// WithOnError sets the callback for watch and scan errors
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a watcher over the repository named by options.Root
func New(engine *scanner.Engine, options scanner.Options, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	extensions := options.IncludeExtensions
	if len(extensions) == 0 {
		extensions = scanner.DefaultRegistry().Extensions()
	}

	w := &Watcher{
		engine:        engine,
		options:       options,
		fsWatcher:     fsWatcher,
		extensions:    extensions,
		debounceDelay: 500 * time.Millisecond,
		pendingFiles:  make(map[string]struct{}),
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if err := w.addDirs(); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to add directories to watch: %w", err)
	}

	return w, nil
}

// addDirs recursively registers every non-excluded directory
func (w *Watcher) addDirs() error {
	excluded := w.options.ExcludeDirs
	if len(excluded) == 0 {
		excluded = scanner.DefaultExcludeDirs
	}
	return filepath.Walk(w.options.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if path != w.options.Root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		for _, skip := range excluded {
			if name == skip {
				return filepath.SkipDir
			}
		}
		return w.fsWatcher.Add(path)
	})
}

// Start begins watching for changes
func (w *Watcher) Start() {
	go w.eventLoop()
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.fsWatcher.Add(event.Name)
			return
		}
	}

	if !scanner.HasExtension(event.Name, w.extensions) {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pendingFiles[event.Name] = struct{}{}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerScan)
}

// triggerScan reruns the engine after the debounce window closes
func (w *Watcher) triggerScan() {
	w.pendingMu.Lock()
	files := make([]string, 0, len(w.pendingFiles))
	for f := range w.pendingFiles {
		files = append(files, f)
	}
	w.pendingFiles = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(files) == 0 {
		return
	}

	select {
	case <-w.done:
		return
	default:
	}

	if w.onScanStart != nil {
		w.onScanStart(files)
	}

	started := time.Now()
	result, err := w.engine.Scan(context.Background(), w.options)
	if err != nil {
		if w.onError != nil {
			w.onError(fmt.Errorf("rescan failed: %w", err))
		}
		return
	}

	if w.onScanDone != nil {
		w.onScanDone(result, time.Since(started))
	}
}
