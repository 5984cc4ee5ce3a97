package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/scanner/graph"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "flowlens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(repositoryPath string) *graph.ScanResult {
	result := graph.NewScanResult(repositoryPath)
	node := &graph.WorkflowNode{
		ID:   graph.NodeID("src/orders.cs", graph.DBWrite, 12),
		Type: graph.DBWrite,
		Name: "Orders",
		Location: graph.CodeLocation{
			FilePath:   "src/orders.cs",
			LineNumber: 12,
		},
	}
	result.AddNode(node)
	result.FilesScanned = 1
	result.Finish(time.Now().Add(-time.Second))
	return result
}

func TestScanLifecycle(t *testing.T) {
	db := openTestDB(t)

	result := sampleResult("/repo/shop")
	require.NoError(t, db.CreateScan(result.ScanID, result.RepositoryPath))
	require.NoError(t, db.UpdateStatus(result.ScanID, StatusDiscovering))
	require.NoError(t, db.UpdateStatus(result.ScanID, StatusScanning))
	require.NoError(t, db.SaveResult(result))

	records, err := db.ListScans("/repo/shop", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusCompleted, records[0].Status)
	assert.Equal(t, 1, records[0].FilesScanned)
	assert.Equal(t, 1, records[0].NodeCount)
	assert.Equal(t, 0, records[0].EdgeCount)
}

func TestSaveResultWithoutCreate(t *testing.T) {
	db := openTestDB(t)

	result := sampleResult("/repo/shop")
	require.NoError(t, db.SaveResult(result))

	stored, err := db.GetScan(result.ScanID)
	require.NoError(t, err)
	assert.Equal(t, result.ScanID, stored.ScanID)
	require.Len(t, stored.Nodes, 1)
	assert.Equal(t, graph.DBWrite, stored.Nodes[0].Type)
}

func TestMarkFailed(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.CreateScan("scan-1", "/repo/shop"))
	require.NoError(t, db.MarkFailed("scan-1", errors.New("root not readable")))

	records, err := db.ListScans("", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusFailed, records[0].Status)
	require.Len(t, records[0].Errors, 1)
	assert.Contains(t, records[0].Errors[0], "root not readable")
}

func TestUpdateStatusUnknownScan(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.UpdateStatus("missing", StatusScanning))
}

func TestGetScanUnknown(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetScan("missing")
	assert.Error(t, err)
}

func TestListScansLimitAndOrder(t *testing.T) {
	db := openTestDB(t)

	var lastID string
	for i := 0; i < 3; i++ {
		result := sampleResult("/repo/shop")
		require.NoError(t, db.SaveResult(result))
		lastID = result.ScanID
	}

	records, err := db.ListScans("/repo/shop", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, lastID, records[0].ScanID)
}
