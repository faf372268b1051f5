// Package cli wires the discussion-export command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/discussion-export/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "discussion-export",
	Short: "Export GitHub Discussions to Markdown archives",
	Long: `discussion-export fetches a GitHub Discussion through the GraphQL API
and writes it to a single self-contained Markdown file. Embedded images
and videos are downloaded next to the archive and references are
rewritten to the local copies, with the original URLs preserved.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
