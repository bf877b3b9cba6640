package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomina-dev/nomina/internal/beancount"
	"github.com/nomina-dev/nomina/internal/bzv"
	"github.com/nomina-dev/nomina/internal/format"
	"github.com/nomina-dev/nomina/internal/gnucash"
	"github.com/nomina-dev/nomina/internal/model"
	"github.com/nomina-dev/nomina/internal/msmoney"
	"github.com/nomina-dev/nomina/internal/qif"
)

// statsLoaders reads a file of the keyed format far enough to compute its
// native statistics.
var statsLoaders = map[string]func(path string) (model.Stats, error){
	format.AcronymQIF: func(path string) (model.Stats, error) {
		p := qif.NewParser()
		if err := p.ParseFile(path); err != nil {
			return model.Stats{}, err
		}
		return p.Stats(), nil
	},
	format.AcronymGnuCashXML: func(path string) (model.Stats, error) {
		doc, err := gnucash.Load(path)
		if err != nil {
			return model.Stats{}, err
		}
		return doc.Stats(), nil
	},
	format.AcronymBeancount: func(path string) (model.Stats, error) {
		var ledger beancount.Ledger
		if err := ledger.LoadFile(context.Background(), path); err != nil {
			return model.Stats{}, err
		}
		return ledger.Stats(), nil
	},
	format.AcronymBankingZV: func(path string) (model.Stats, error) {
		book := bzv.NewBook("stats")
		if err := book.LoadFile(path, "stats"); err != nil {
			return model.Stats{}, err
		}
		return book.Stats(), nil
	},
	format.AcronymMsMoney: func(path string) (model.Stats, error) {
		db := msmoney.NewDatabase()
		if err := db.Load(path); err != nil {
			return model.Stats{}, err
		}
		return db.Stats(), nil
	},
	format.AcronymLedgerBook: func(path string) (model.Stats, error) {
		book, err := model.LoadBook(path)
		if err != nil {
			return model.Stats{}, err
		}
		return book.Stats(), nil
	},
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Show summary statistics of an accounting file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, found, err := format.NewRegistry().Detect(path)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("unsupported or unrecognized input format for file: %s", path)
			}
			loader := statsLoaders[f.Acronym]
			if loader == nil {
				return fmt.Errorf("no statistics support for format: %s", f.Acronym)
			}

			stats, err := loader(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, f.Acronym)
			stats.Show(cmd.OutOrStdout())
			return nil
		},
	}
}
