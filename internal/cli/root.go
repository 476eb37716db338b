// Package cli implements the finch command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "finch",
	Short: "Personal banking dashboard with an AI assistant",
	Long: `Finch is a demo personal banking stack: a local dashboard engine that
owns the ledger, and an assistant server whose commands the dashboard
replays through the same mutation path as the UI.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default ~/.finch/config.toml)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the finch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "finch %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
