package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/scanner/graph"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const savePanelJSX = `import React from 'react';

export function SavePanel() {
  const handleSave = async () => {
    await persist();
  };

  return (
    <div className="panel">
      <button onClick={handleSave}>Save</button>
      <span>changes are stored remotely</span>
    </div>
  );
  async function persist() {
    await fetch('/api/save', {method:'POST'});
  }
}
`

func TestScanButtonToAPICall(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SavePanel.jsx", savePanelJSX)

	engine := NewEngine()
	result, err := engine.Scan(context.Background(), Options{
		Root:   dir,
		Detect: DefaultDetectFlags(),
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Equal(t, 1, result.FilesScanned)

	require.Len(t, result.Nodes, 2)
	byType := map[graph.OperationType]*graph.WorkflowNode{}
	for _, n := range result.Nodes {
		byType[n.Type] = n
	}
	ui := byType[graph.UITrigger]
	call := byType[graph.HTTPCall]
	require.NotNil(t, ui)
	require.NotNil(t, call)
	assert.Equal(t, 10, ui.Location.LineNumber)
	assert.Equal(t, 15, call.Location.LineNumber)
	assert.Equal(t, "POST", call.HTTPMethod)
	assert.Equal(t, "/api/save", call.Endpoint)

	require.Len(t, result.Edges, 1)
	edge := result.Edges[0]
	assert.Equal(t, ui.ID, edge.Source)
	assert.Equal(t, call.ID, edge.Target)
	assert.Equal(t, "User Action → API Call", edge.Label)
}

const ordersServiceTS = `import { Injectable } from '@angular/core';
import { HttpClient } from '@angular/common/http';

@Injectable({ providedIn: 'root' })
export class OrderService {
  constructor(private http: HttpClient) {}

  create(order: Order) {
    return this.http.post<Order>('/api/orders', order);
  }
}
`

const ordersControllerCS = `using Microsoft.AspNetCore.Mvc;

namespace Shop.Api.Controllers
{
    [ApiController]
    public class OrdersController : ControllerBase
    {
        [HttpPost("/api/orders")]
        public async Task<IActionResult> CreateOrder(Order order)
        {
            return Ok(order);
        }
    }
}
`

func TestScanMatchesRouteAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("web", "order.service.ts"), ordersServiceTS)
	writeFile(t, dir, filepath.Join("api", "OrdersController.cs"), ordersControllerCS)

	engine := NewEngine()
	result, err := engine.Scan(context.Background(), Options{
		Root:   dir,
		Detect: DefaultDetectFlags(),
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	var call, route *graph.WorkflowNode
	for _, n := range result.Nodes {
		switch n.Type {
		case graph.HTTPCall:
			call = n
		case graph.HTTPRoute:
			route = n
		}
	}
	require.NotNil(t, call)
	require.NotNil(t, route)
	assert.NotEqual(t, call.Location.FilePath, route.Location.FilePath)

	var matched []*graph.WorkflowEdge
	for _, edge := range result.Edges {
		if edge.Label == "matched route" {
			matched = append(matched, edge)
		}
	}
	require.Len(t, matched, 1)
	assert.Equal(t, call.ID, matched[0].Source)
	assert.Equal(t, route.ID, matched[0].Target)
	assert.Equal(t, graph.EdgeRouteMatch, matched[0].EdgeType)
}

func TestScanDeterminism(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SavePanel.jsx", savePanelJSX)
	writeFile(t, dir, filepath.Join("web", "order.service.ts"), ordersServiceTS)
	writeFile(t, dir, filepath.Join("api", "OrdersController.cs"), ordersControllerCS)

	engine := NewEngine()
	scan := func() ([]string, []string) {
		result, err := engine.Scan(context.Background(), Options{Root: dir, Detect: DefaultDetectFlags()})
		require.NoError(t, err)
		var nodes, edges []string
		for _, n := range result.Nodes {
			nodes = append(nodes, n.ID)
		}
		for _, e := range result.Edges {
			edges = append(edges, e.Source+"|"+e.Target+"|"+e.Label)
		}
		sort.Strings(nodes)
		sort.Strings(edges)
		return nodes, edges
	}

	nodes1, edges1 := scan()
	nodes2, edges2 := scan()
	assert.Equal(t, nodes1, nodes2)
	assert.Equal(t, edges1, edges2)
}

func TestScanNoDanglingEdges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SavePanel.jsx", savePanelJSX)
	writeFile(t, dir, filepath.Join("api", "OrdersController.cs"), ordersControllerCS)

	result, err := NewEngine().Scan(context.Background(), Options{Root: dir, Detect: DefaultDetectFlags()})
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, n := range result.Nodes {
		ids[n.ID] = true
	}
	for _, e := range result.Edges {
		assert.True(t, ids[e.Source], "edge source %s must exist", e.Source)
		assert.True(t, ids[e.Target], "edge target %s must exist", e.Target)
	}
}

func TestScanDetectFlags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Repo.cs", `public class Repo {
    public List<Order> Load() {
        return _context.Orders.Where(o => o.Open).ToList();
    }
}
`)

	flags := DefaultDetectFlags()
	flags.Database = false
	result, err := NewEngine().Scan(context.Background(), Options{Root: dir, Detect: flags})
	require.NoError(t, err)
	assert.Empty(t, result.Nodes, "database detection disabled")

	result, err = NewEngine().Scan(context.Background(), Options{Root: dir, Detect: DefaultDetectFlags()})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Nodes)
	for _, n := range result.Nodes {
		assert.Equal(t, graph.DBRead, n.Type)
		assert.Equal(t, "Orders", n.TableName)
	}
}

func TestScanMissingRoot(t *testing.T) {
	result, err := NewEngine().Scan(context.Background(), Options{
		Root:   filepath.Join(t.TempDir(), "does-not-exist"),
		Detect: DefaultDetectFlags(),
	})
	require.NoError(t, err, "an unreadable root yields a degenerate result, not an error")
	assert.Empty(t, result.Nodes)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cannot enumerate root")
}

func TestScanProgressCallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsx", savePanelJSX)
	writeFile(t, dir, "b.ts", ordersServiceTS)

	var calls int
	var lastDone, lastTotal int
	result, err := NewEngine(WithWorkers(1)).Scan(context.Background(), Options{
		Root:   dir,
		Detect: DefaultDetectFlags(),
		Progress: func(done, total, nodes int) {
			calls++
			lastDone, lastTotal = done, total
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesScanned)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, lastDone)
	assert.Equal(t, 2, lastTotal)
}

func TestScanProgressCountsDedupedNodes(t *testing.T) {
	dir := t.TempDir()
	// two bindings on one line fold onto a single node
	writeFile(t, dir, "toolbar.html",
		`<button (click)="save()">save</button><button (click)="reset()">reset</button>`)

	var lastNodes int
	result, err := NewEngine().Scan(context.Background(), Options{
		Root:   dir,
		Detect: DefaultDetectFlags(),
		Progress: func(done, total, nodes int) {
			lastNodes = nodes
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, 1, lastNodes)
}

func TestScanCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, dir, filepath.Join("src", "file"+string(rune('a'+i))+".ts"), ordersServiceTS)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Scan(ctx, Options{Root: dir, Detect: DefaultDetectFlags()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryDispatch(t *testing.T) {
	registry := DefaultRegistry()

	testCases := []struct {
		path   string
		expect []string
	}{
		{"app/OrderService.cs", []string{"csharp"}},
		{"app/order.service.ts", []string{"typescript", "angular"}},
		{"app/SavePanel.tsx", []string{"typescript", "react"}},
		{"app/Main.xaml", []string{"wpf"}},
		{"app/Main.xaml.cs", []string{"csharp", "wpf"}},
		{"app/order.component.html", []string{"angular"}},
		{"README.md", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			var names []string
			for _, d := range registry.For(tc.path) {
				names = append(names, d.Name())
			}
			assert.Equal(t, tc.expect, names)
		})
	}
}
