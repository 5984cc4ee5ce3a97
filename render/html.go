package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
)

// htmlPage is a self-contained document: the filtered graph is
// embedded as JSON and laid out client-side without external assets
var htmlPage = template.Must(template.New("workflow").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Workflow graph {{.ScanID}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 0; background: #fafafa; }
  header { padding: 12px 20px; background: #263238; color: #eceff1; }
  header small { color: #90a4ae; margin-left: 12px; }
  #truncated { padding: 6px 20px; background: #fff3e0; color: #e65100; }
  svg { width: 100%; }
  .node rect { rx: 6; stroke: #455a64; stroke-width: 1; }
  .node text { font-size: 11px; fill: #212121; }
  .edge { stroke: #78909c; stroke-width: 1.2; fill: none; marker-end: url(#arrow); }
  .edge-label { font-size: 9px; fill: #546e7a; }
</style>
</head>
<body>
<header>workflow graph<small>{{.Repository}} · {{.NodeCount}} nodes · {{.EdgeCount}} edges</small></header>
{{if .Omitted}}<div id="truncated">truncated: {{.Omitted}} nodes omitted</div>{{end}}{{.Marker}}
<svg id="graph"></svg>
<script>
const data = {{.Data}};
const colWidth = 280, rowHeight = 54, boxW = 240, boxH = 38;
const files = [...new Set(data.nodes.map(n => n.location.file_path))];
const pos = {};
data.nodes.forEach(n => {
  const col = files.indexOf(n.location.file_path);
  const row = Object.values(pos).filter(p => p.col === col).length;
  pos[n.id] = {col, row};
});
const svg = document.getElementById('graph');
const ns = 'http://www.w3.org/2000/svg';
const maxRow = Math.max(...Object.values(pos).map(p => p.row), 0);
svg.setAttribute('height', (maxRow + 2) * rowHeight + 40);
svg.innerHTML = '<defs><marker id="arrow" markerWidth="8" markerHeight="8" refX="8" refY="4" orient="auto"><path d="M0,0 L8,4 L0,8 z" fill="#78909c"/></marker></defs>';
const center = id => {
  const p = pos[id];
  return {x: p.col * colWidth + 20 + boxW / 2, y: p.row * rowHeight + 20 + boxH / 2};
};
data.edges.forEach(e => {
  if (!pos[e.source] || !pos[e.target]) return;
  const a = center(e.source), b = center(e.target);
  const line = document.createElementNS(ns, 'path');
  line.setAttribute('d', 'M' + a.x + ',' + a.y + ' L' + b.x + ',' + b.y);
  line.setAttribute('class', 'edge');
  svg.appendChild(line);
  const label = document.createElementNS(ns, 'text');
  label.setAttribute('x', (a.x + b.x) / 2);
  label.setAttribute('y', (a.y + b.y) / 2 - 3);
  label.setAttribute('class', 'edge-label');
  label.textContent = e.label;
  svg.appendChild(label);
});
data.nodes.forEach(n => {
  const p = pos[n.id];
  const g = document.createElementNS(ns, 'g');
  g.setAttribute('class', 'node');
  const rect = document.createElementNS(ns, 'rect');
  rect.setAttribute('x', p.col * colWidth + 20);
  rect.setAttribute('y', p.row * rowHeight + 20);
  rect.setAttribute('width', boxW);
  rect.setAttribute('height', boxH);
  rect.setAttribute('fill', n.color);
  rect.setAttribute('fill-opacity', '0.75');
  g.appendChild(rect);
  const text = document.createElementNS(ns, 'text');
  text.setAttribute('x', p.col * colWidth + 28);
  text.setAttribute('y', p.row * rowHeight + 42);
  text.textContent = n.caption;
  g.appendChild(text);
  const title = document.createElementNS(ns, 'title');
  title.textContent = n.type + ' · ' + n.location.file_path + ':' + n.location.line_number;
  g.appendChild(title);
  svg.appendChild(g);
});
</script>
</body>
</html>
`))

type htmlNode struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Caption  string             `json:"caption"`
	Color    string             `json:"color"`
	Location graph.CodeLocation `json:"location"`
}

func renderHTML(result *graph.ScanResult, sub subset) (string, error) {
	nodes := make([]htmlNode, 0, len(sub.nodes))
	for _, node := range sub.nodes {
		nodes = append(nodes, htmlNode{
			ID:       node.ID,
			Type:     string(node.Type),
			Caption:  nodeCaption(node),
			Color:    ColorFor(node.Type),
			Location: node.Location,
		})
	}
	edges := sub.edges
	if edges == nil {
		edges = []*graph.WorkflowEdge{}
	}
	payload, err := json.Marshal(struct {
		Nodes []htmlNode            `json:"nodes"`
		Edges []*graph.WorkflowEdge `json:"edges"`
	}{nodes, edges})
	if err != nil {
		return "", err
	}

	// html/template strips comments from the template text, so the
	// machine-readable marker has to arrive as pre-rendered HTML
	var marker template.HTML
	if sub.omitted > 0 {
		marker = template.HTML(fmt.Sprintf("<!-- truncated: %d nodes omitted -->", sub.omitted))
	}

	var b strings.Builder
	err = htmlPage.Execute(&b, struct {
		ScanID     string
		Repository string
		NodeCount  int
		EdgeCount  int
		Omitted    int
		Marker     template.HTML
		Data       template.JS
	}{
		ScanID:     result.ScanID,
		Repository: result.RepositoryPath,
		NodeCount:  len(sub.nodes),
		EdgeCount:  len(edges),
		Omitted:    sub.omitted,
		Marker:     marker,
		Data:       template.JS(payload),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
