package render

import "github.com/flowlens/flowlens/scanner/graph"

// typeColors is the fixed node taxonomy shared by every format
var typeColors = map[graph.OperationType]string{
	graph.UITrigger:      "#8BC34A",
	graph.HTTPCall:       "#2196F3",
	graph.HTTPRoute:      "#3F51B5",
	graph.DBRead:         "#4CAF50",
	graph.DBWrite:        "#FF9800",
	graph.FileRead:       "#9C27B0",
	graph.FileWrite:      "#E91E63",
	graph.MessageSend:    "#00BCD4",
	graph.MessageReceive: "#009688",
	graph.DataTransform:  "#FFEB3B",
	graph.CacheRead:      "#795548",
	graph.CacheWrite:     "#607D8B",
}

// fallback for a type outside the known taxonomy; keeps the color
// function total
const defaultColor = "#9E9E9E"

// ColorFor returns the display color for an operation type
func ColorFor(opType graph.OperationType) string {
	if color, ok := typeColors[opType]; ok {
		return color
	}
	return defaultColor
}
