package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nomina-dev/nomina/internal/convert"
	"github.com/nomina-dev/nomina/internal/dateutil"
	"github.com/nomina-dev/nomina/internal/format"
	"github.com/nomina-dev/nomina/internal/model"
)

func newSplitCommand() *cobra.Command {
	var parts int
	var outputDir string
	var prune bool

	cmd := &cobra.Command{
		Use:   "split <input-file>",
		Short: "Split a file into consecutive date-range ledger books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args[0], parts, outputDir, prune)
		},
	}

	cmd.Flags().IntVarP(&parts, "parts", "n", 2, "number of date ranges to split into")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", ".", "directory for the split ledger books")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop accounts unused within each range")

	return cmd
}

func runSplit(cmd *cobra.Command, input string, parts int, outputDir string, prune bool) error {
	result, err := convert.New().Convert(input, format.AcronymLedgerBook)
	if err != nil {
		return err
	}
	book := result.Book

	stats := book.Stats()
	if stats.StartDate == "" || stats.EndDate == "" {
		return fmt.Errorf("no dated transactions to split in %s", input)
	}
	ranges, err := dateutil.SplitDateRange(stats.StartDate, stats.EndDate, parts)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	for i, r := range ranges {
		slice, err := book.Filter(r.Start, r.End, prune)
		if err != nil {
			return err
		}
		path := filepath.Join(outputDir, fmt.Sprintf("%s-%d.yaml", base, i+1))
		if err := model.SaveBook(path, slice); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s to %s, %d transaction(s)\n",
			path, r.Start, r.End, len(slice.Transactions))
	}
	return nil
}
