package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/render"
	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/storage"
)

func diagramCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		formatName string
		maxNodes   int
		module     string
		table      string
		endpoint   string
		neighbors  bool
	)

	cmd := &cobra.Command{
		Use:   "diagram [scan-id]",
		Short: "Render a stored scan as a diagram",
		Long: `Renders a previously recorded scan. Without a scan id the most
recent completed scan is used. Filters narrow the diagram to nodes
from a module path, touching a table or calling an endpoint.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadResult(inputPath, args)
			if err != nil {
				return err
			}

			format, err := render.ParseFormat(formatName)
			if err != nil {
				return err
			}
			diagram, err := render.Render(result, render.Options{
				Format:   format,
				MaxNodes: maxNodes,
				Filter: render.Filter{
					Module:    module,
					Table:     table,
					Endpoint:  endpoint,
					Neighbors: neighbors,
				},
			})
			if err != nil {
				return err
			}
			return writeOutput(outputPath, diagram)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "render a scan result JSON file instead of a stored scan")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "mermaid", "diagram format: mermaid, dot, plantuml, json or html")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "node budget before truncation (0 uses the format default)")
	cmd.Flags().StringVar(&module, "module", "", "keep only nodes under this path prefix")
	cmd.Flags().StringVar(&table, "table", "", "keep only nodes touching this table")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "keep only nodes calling or serving this endpoint")
	cmd.Flags().BoolVar(&neighbors, "neighbors", false, "also keep direct neighbors of matching nodes")

	return cmd
}

// loadResult resolves the scan to render: an explicit JSON file, a
// stored scan by id, or the most recent completed scan
func loadResult(inputPath string, args []string) (*graph.ScanResult, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
		}
		return graph.UnmarshalResult(data)
	}

	db, err := storage.Open(historyDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open scan history: %w", err)
	}
	defer db.Close()

	if len(args) > 0 {
		return db.GetScan(args[0])
	}
	return latestScan(db)
}

// latestScan returns the most recently completed scan
func latestScan(db *storage.DB) (*graph.ScanResult, error) {
	records, err := db.ListScans("", 0)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.Status == storage.StatusCompleted {
			return db.GetScan(record.ScanID)
		}
	}
	return nil, fmt.Errorf("no completed scans recorded, run a scan first")
}

// historyDBPath resolves the database location for commands that
// operate without a repository config
func historyDBPath() string {
	if DbPath != "" {
		return DbPath
	}
	return ".flowlens.db"
}
