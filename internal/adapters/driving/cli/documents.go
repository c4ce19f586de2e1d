package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// documentsJSON is a flag for the documents command.
var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List processed documents",
	Long:  `Lists catalogued documents, newest detected date first.`,
	Args:  cobra.NoArgs,
	RunE:  runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if catalogStore == nil {
		return errors.New("catalog not configured")
	}

	ctx := context.Background()

	docs, err := catalogStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents catalogued.")
		return nil
	}

	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s\n", d.ID)
		cmd.Printf("    File: %s\n", d.FileName)
		if d.DetectedType != "" {
			cmd.Printf("    Type: %s\n", d.DetectedType)
		}
		if d.DetectedDate != "" {
			cmd.Printf("    Date: %s\n", d.DetectedDate)
		}
		cmd.Printf("    Entities: %d\n", d.EntityCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}
