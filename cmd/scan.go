package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/config"
	"github.com/flowlens/flowlens/render"
	"github.com/flowlens/flowlens/repository"
	"github.com/flowlens/flowlens/scanner"
	"github.com/flowlens/flowlens/storage"
)

func scanCmd() *cobra.Command {
	var (
		outputPath string
		formatName string
		maxNodes   int
		workers    int
		noHistory  bool
		database   bool
		api        bool
		files      bool
		messages   bool
		transforms bool
	)

	cmd := &cobra.Command{
		Use:   "scan [repository-path]",
		Short: "Discover workflows in a repository",
		Long: `Scans a repository for workflow operations (UI triggers, HTTP
calls and routes, database access, file I/O, messaging), links them
into workflow chains and prints a diagram of the result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			project, err := repository.New().DetectProject(root)
			if err == nil && project.RootPath != "" {
				logger.Info("detected project", "name", project.Name, "type", project.Type)
				root = project.RootPath
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			options := cfg.ScanOptions(root)
			if len(options.IncludeExtensions) == 0 && project != nil {
				options.IncludeExtensions = repository.DefaultExtensions(project.Type)
			}
			applyDetectOverrides(cmd, &options.Detect, database, api, files, messages, transforms)

			var recorder *scanRecorder
			if !noHistory {
				history, err := storage.Open(historyPath(cfg))
				if err != nil {
					logger.Warn("could not open scan history", "error", err)
				} else {
					defer history.Close()
					recorder = newScanRecorder(history)
					recorder.begin(root)
				}
			}

			options.Progress = func(done, total, nodes int) {
				if done == 1 {
					recorder.scanning()
				}
				if done == total || done%50 == 0 {
					logger.Info("scanning", "files", fmt.Sprintf("%d/%d", done, total), "nodes", nodes)
				}
			}

			var engineOpts []scanner.EngineOption
			if workers > 0 {
				engineOpts = append(engineOpts, scanner.WithWorkers(workers))
			}
			engine := scanner.NewEngine(engineOpts...)

			recorder.discovering()
			result, err := engine.Scan(cmd.Context(), options)
			if err != nil {
				recorder.fail(err)
				return fmt.Errorf("scan failed: %w", err)
			}
			recorder.complete(result)

			logger.Info("scan complete",
				"scan_id", result.ScanID,
				"files", result.FilesScanned,
				"nodes", len(result.Nodes),
				"edges", len(result.Edges),
				"seconds", fmt.Sprintf("%.2f", result.ScanTimeSeconds))
			for _, message := range result.Errors {
				logger.Warn(message)
			}

			if formatName == "" {
				formatName = cfg.Output.Format
			}
			format, err := render.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if maxNodes == 0 {
				maxNodes = cfg.Output.MaxNodes
			}
			diagram, err := render.Render(result, render.Options{
				Format:   format,
				MaxNodes: maxNodes,
			})
			if err != nil {
				return err
			}
			if outputPath == "" {
				outputPath = cfg.Output.Path
			}
			return writeOutput(outputPath, diagram)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "diagram format: mermaid, dot, plantuml, json or html")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "node budget before truncation (0 uses the format default)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent file workers (0 uses the CPU count)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the scan in the history database")
	cmd.Flags().BoolVar(&database, "database", true, "detect database reads and writes")
	cmd.Flags().BoolVar(&api, "api", true, "detect HTTP calls and routes")
	cmd.Flags().BoolVar(&files, "files", true, "detect file reads and writes")
	cmd.Flags().BoolVar(&messages, "messages", true, "detect queue sends and receives")
	cmd.Flags().BoolVar(&transforms, "transforms", false, "detect data transforms and cache access")

	return cmd
}

// applyDetectOverrides layers explicitly set CLI flags over the
// config file values
func applyDetectOverrides(cmd *cobra.Command, flags *scanner.DetectFlags, database, api, files, messages, transforms bool) {
	if cmd.Flags().Changed("database") {
		flags.Database = database
	}
	if cmd.Flags().Changed("api") {
		flags.API = api
	}
	if cmd.Flags().Changed("files") {
		flags.Files = files
	}
	if cmd.Flags().Changed("messages") {
		flags.Messages = messages
	}
	if cmd.Flags().Changed("transforms") {
		flags.Transforms = transforms
	}
}

func loadConfig(root string) (*config.Config, error) {
	if ConfigPath != "" {
		return config.Load(ConfigPath)
	}
	return config.LoadFromRoot(root)
}

// historyPath resolves the database location, preferring the global
// --db flag over the config file
func historyPath(cfg *config.Config) string {
	if DbPath != "" {
		return DbPath
	}
	if cfg.DBPath != "" {
		return cfg.DBPath
	}
	return ".flowlens.db"
}

func writeOutput(path, content string) error {
	if path == "" || path == "-" {
		fmt.Println(content)
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	logger.Info("diagram written", "path", path)
	return nil
}
