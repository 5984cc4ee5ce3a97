// Package cmd wires the flowlens subcommands.
package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// DbPath names the scan history database, shared by all commands
	DbPath string

	// ConfigPath overrides the per-repository config file location
	ConfigPath string

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
)

// RegisterCommands adds all subcommands to the root command
func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(diagramCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(watchCmd())
}
