package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chartsift/chartsift/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push processed records to the workspace",
	Long: `Pushes every processed record and its entities to the configured
Notion database. Entries are upserted under stable keys, so re-running
after a partial failure resumes where it left off.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ctx := context.Background()

	cmd.Println("Syncing records to workspace...")

	count, err := syncService.SyncRecords(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSyncUnavailable) {
			return fmt.Errorf("%w; set notion.database_id in the config and export %s to enable sync",
				err, notionTokenEnv)
		}
		return fmt.Errorf("sync failed after %d entries: %w", count, err)
	}

	cmd.Printf("Synced %d workspace entries.\n", count)
	return nil
}
