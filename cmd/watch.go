package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/scanner"
	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/storage"
	"github.com/flowlens/flowlens/watcher"
)

func watchCmd() *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch [repository-path]",
		Short: "Rescan automatically when source files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			options := cfg.ScanOptions(root)

			var recorder *scanRecorder
			history, err := storage.Open(historyPath(cfg))
			if err != nil {
				logger.Warn("could not open scan history", "error", err)
			} else {
				defer history.Close()
				recorder = newScanRecorder(history)
			}

			w, err := watcher.New(scanner.NewEngine(), options,
				watcher.WithDebounceDelay(time.Duration(debounceMs)*time.Millisecond),
				watcher.WithOnScanStart(func(files []string) {
					logger.Info("change detected, rescanning", "files", len(files))
					recorder.begin(root)
					recorder.scanning()
				}),
				watcher.WithOnScanDone(func(result *graph.ScanResult, duration time.Duration) {
					logger.Info("rescan complete",
						"nodes", len(result.Nodes),
						"edges", len(result.Edges),
						"duration", duration.Round(time.Millisecond))
					recorder.complete(result)
				}),
				watcher.WithOnError(func(err error) {
					logger.Error("watch error", "error", err)
					recorder.fail(err)
				}),
			)
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}

			w.Start()
			logger.Info("watching for changes", "root", root)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-cmd.Context().Done():
			}
			logger.Info("stopping")
			return w.Stop()
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 500, "milliseconds changes must settle before a rescan")

	return cmd
}
