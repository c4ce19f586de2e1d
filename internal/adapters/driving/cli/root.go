// Package cli implements the chartsift command-line interface.
//
// Commands run against package-level service variables wired once at
// startup by Execute. Handlers guard against unwired services so a
// misconfigured build fails with a message instead of a panic.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// cfgFile overrides the default config path when --config is set.
	cfgFile string

	// verbose enables debug logging on stderr.
	verbose bool

	// version is stamped at build time via -ldflags.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "chartsift",
	Short: "Ingest, normalise and search medical documents",
	Long: `ChartSift processes medical documents from an inbox directory:
it extracts their text, normalises clinical entities against built-in
vocabularies, and indexes each document for semantic search. All state
lives in local files under the data directory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.chartsift/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute wires the services from configuration and runs the root
// command. The wiring hook is attached here, not on the command
// definition, so it only runs for real invocations; it fires after
// flag parsing, once --config and --verbose are known.
func Execute() error {
	rootCmd.PersistentPreRunE = initServices
	defer closeServices()
	return rootCmd.Execute()
}

// printJSON renders v as indented JSON on the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
