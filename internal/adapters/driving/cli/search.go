package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chartsift/chartsift/internal/core/services"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search processed documents by meaning",
	Long: `Embeds the query and returns the most similar processed documents,
hydrated with their catalog entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", services.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()

	results, err := searchService.Search(ctx, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		name := results[i].Path
		if name == "" {
			name = results[i].ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, name, results[i].Score)
		if results[i].DetectedType != "" {
			cmd.Printf("      Type: %s\n", results[i].DetectedType)
		}
		if results[i].DetectedDate != "" {
			cmd.Printf("      Date: %s\n", results[i].DetectedDate)
		}
		cmd.Println()
	}

	return nil
}
