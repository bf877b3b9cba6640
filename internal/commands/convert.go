package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nomina-dev/nomina/internal/config"
	"github.com/nomina-dev/nomina/internal/convert"
)

func newConvertCommand() *cobra.Command {
	var outputFormat string
	var outputPath string
	var configPath string
	var startDate string
	var endDate string
	var prune bool
	var strict bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "convert <input-file>",
		Short: "Convert an accounting file to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := convert.DefaultOptions()
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				opts = optionsFromConfig(cfg)
			}
			if cmd.Flags().Changed("prune") {
				opts.Prune = prune
			}
			if strict {
				opts.Lenient = false
			}
			opts.StartDate = startDate
			opts.EndDate = endDate

			converter := convert.New()
			converter.SetOptions(opts)

			result, err := converter.ConvertFile(args[0], strings.ToUpper(outputFormat), outputPath)
			if err != nil {
				return err
			}
			if verbose {
				for _, entry := range result.Log.Entries() {
					fmt.Fprintln(cmd.ErrOrStderr(), entry)
				}
			} else {
				for _, entry := range result.Log.Warnings() {
					fmt.Fprintln(cmd.ErrOrStderr(), entry)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "LB-YAML", "output format acronym")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "nomina.yaml configuration file")
	cmd.Flags().StringVar(&startDate, "start", "", "only keep transactions on or after this ISO date")
	cmd.Flags().StringVar(&endDate, "end", "", "only keep transactions on or before this ISO date")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop accounts no transaction references")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unbalanced transactions")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print all conversion diagnostics")

	return cmd
}

// optionsFromConfig maps the file configuration onto conversion options.
func optionsFromConfig(cfg *config.Config) convert.Options {
	opts := convert.DefaultOptions()
	if cfg.Defaults.Currency != "" {
		opts.DefaultCurrency = cfg.Defaults.Currency
	}
	if cfg.QIF.AccountType != "" {
		opts.QIFAccountType = cfg.QIF.AccountType
	}
	opts.Lenient = cfg.Balance.Lenient
	opts.Prune = cfg.Output.PruneUnusedAccounts
	return opts
}
