package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomina-dev/nomina/internal/format"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Detect the accounting format of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := format.NewRegistry()
			unknown := 0
			for _, path := range args {
				f, found, err := registry.Detect(path)
				switch {
				case err != nil:
					return err
				case found:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", path, f.Name, f.Acronym)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: unknown\n", path)
					unknown++
				}
			}
			if unknown > 0 {
				return fmt.Errorf("%d file(s) not recognized", unknown)
			}
			return nil
		},
	}
}

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported accounting formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := format.NewRegistry()
			for _, f := range registry.Formats() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-28s %s\n", f.Acronym, f.Name, f.Ext)
			}
			return nil
		},
	}
}
