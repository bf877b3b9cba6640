package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomina-dev/nomina/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "nomina",
		Short:   "Convert between personal accounting file formats",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newSplitCommand())

	return rootCmd
}
