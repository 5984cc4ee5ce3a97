package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowlens",
		Short: "Workflow discovery for polyglot repositories",
		Long: `flowlens scans .NET, TypeScript, React, Angular and WPF sources
for workflow operations, links them into end-to-end chains and
renders the result as mermaid, dot, plantuml, json or html.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cmd.DbPath, "db", "d", "", "scan history database path (default .flowlens.db)")
	rootCmd.PersistentFlags().StringVarP(&cmd.ConfigPath, "config", "c", "", "config file path (default flowlens.yaml at the scan root)")

	cmd.RegisterCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
