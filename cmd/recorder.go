package cmd

import (
	"sync"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/storage"
)

// scanRecorder drives one scan at a time through the history
// lifecycle: queued on begin, discovering/scanning as the engine
// progresses, completed or failed at the end. A nil recorder ignores
// every call, so commands running with history disabled need no
// branching. Recording problems are logged, never fatal.
type scanRecorder struct {
	db *storage.DB

	mu sync.Mutex
	id string
}

func newScanRecorder(db *storage.DB) *scanRecorder {
	return &scanRecorder{db: db}
}

// begin registers a queued scan for the repository
func (r *scanRecorder) begin(repositoryPath string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = uuid.NewString()
	if err := r.db.CreateScan(r.id, repositoryPath); err != nil {
		logger.Warn("could not record scan", "error", err)
		r.id = ""
	}
}

func (r *scanRecorder) discovering() { r.status(storage.StatusDiscovering) }

func (r *scanRecorder) scanning() { r.status(storage.StatusScanning) }

func (r *scanRecorder) status(status string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		return
	}
	if err := r.db.UpdateStatus(r.id, status); err != nil {
		logger.Warn("could not update scan status", "error", err)
	}
}

// complete stores the finished result under the recorded id so the
// printed scan id and the history row agree
func (r *scanRecorder) complete(result *graph.ScanResult) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id != "" {
		result.ScanID = r.id
	}
	if err := r.db.SaveResult(result); err != nil {
		logger.Warn("could not record scan history", "error", err)
	}
	r.id = ""
}

// fail marks the in-flight scan failed. Without an in-flight scan
// (a watch error outside a rescan, say) it is a no-op.
func (r *scanRecorder) fail(scanErr error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		return
	}
	if err := r.db.MarkFailed(r.id, scanErr); err != nil {
		logger.Warn("could not record scan failure", "error", err)
	}
	r.id = ""
}
