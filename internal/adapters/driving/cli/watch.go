package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chartsift/chartsift/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox and process new documents",
	Long: `Watches the configured inbox directory and runs the pipeline for
each new or changed file once its writes settle. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debounce := time.Duration(appConfig.Watch.DebounceMS) * time.Millisecond
	watcher := watch.New(ingestService, debounce)

	cmd.Printf("Watching %s (ctrl-c to stop)...\n", appConfig.Inbox)

	if err := watcher.Watch(ctx, appConfig.Inbox); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
