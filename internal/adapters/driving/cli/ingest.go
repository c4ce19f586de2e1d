package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// ingestRecursive is a flag for the ingest command.
var ingestRecursive bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Process documents through the pipeline",
	Long: `Runs the pipeline over the given files: extract, normalise, embed
and register. With no arguments the configured inbox directory is
scanned instead. Files already processed successfully are skipped;
previously failed files are retried.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "recurse into subdirectories of the inbox")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	var (
		report *domain.RunReport
		err    error
	)
	if len(args) == 0 {
		cmd.Printf("Scanning %s...\n", appConfig.Inbox)
		report, err = ingestService.RunDir(ctx, appConfig.Inbox, ingestRecursive)
	} else {
		report, err = ingestService.Run(ctx, args)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// printReport renders a run report: totals, then entity tallies, then
// per-file failures.
func printReport(cmd *cobra.Command, report *domain.RunReport) {
	cmd.Printf("Processed %d files: %d succeeded, %d failed, %d skipped.\n",
		report.Total, report.Succeeded, report.Failed, report.Skipped)

	if len(report.EntityCounts) > 0 {
		kinds := make([]string, 0, len(report.EntityCounts))
		for kind := range report.EntityCounts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)

		cmd.Println()
		cmd.Println("Entities:")
		for _, kind := range kinds {
			cmd.Printf("  %-12s %d\n", kind, report.EntityCounts[kind])
		}
	}

	if len(report.Failures) > 0 {
		cmd.Println()
		cmd.Println("Failures:")
		for i := range report.Failures {
			f := &report.Failures[i]
			cmd.Printf("  %s (%s): %s\n", f.Path, f.Stage, f.Error)
		}
	}
}
