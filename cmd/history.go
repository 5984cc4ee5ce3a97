package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/storage"
)

func historyCmd() *cobra.Command {
	var (
		repoPath string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.Open(historyDBPath())
			if err != nil {
				return fmt.Errorf("failed to open scan history: %w", err)
			}
			defer db.Close()

			if repoPath != "" {
				if absolute, err := filepath.Abs(repoPath); err == nil {
					repoPath = absolute
				}
			}
			records, err := db.ListScans(repoPath, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				logger.Info("no scans recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCAN ID\tWHEN\tSTATUS\tFILES\tNODES\tEDGES\tSECONDS")
			for _, record := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\n",
					record.ScanID,
					record.CreatedAt.Local().Format(time.DateTime),
					record.Status,
					record.FilesScanned,
					record.NodeCount,
					record.EdgeCount,
					record.DurationSeconds)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "r", "", "only list scans of this repository")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum scans to list (0 for all)")

	return cmd
}
