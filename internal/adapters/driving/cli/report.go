package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reportLimit int
	reportJSON  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List past ingestion runs",
	Long:  `Lists recent ingestion runs with their outcome totals, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 10, "maximum number of runs")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	if runLogStore == nil {
		return errors.New("run log not configured")
	}

	ctx := context.Background()

	runs, err := runLogStore.ListRuns(ctx, reportLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if reportJSON {
		return printJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("%s  %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"), r.RunID)
		cmd.Printf("  %d processed: %d succeeded, %d failed, %d skipped\n",
			r.Total, r.Succeeded, r.Failed, r.Skipped)
		for j := range r.Failures {
			f := &r.Failures[j]
			cmd.Printf("    %s (%s): %s\n", f.Path, f.Stage, f.Error)
		}
	}

	return nil
}
