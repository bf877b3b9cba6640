package model

import (
	"fmt"
	"io"
	"sort"
)

// Stats is a derived snapshot of a native or ledger model, used for display
// and as a test oracle when comparing conversions.
type Stats struct {
	Accounts     int            `yaml:"accounts"`
	Transactions int            `yaml:"transactions"`
	StartDate    string         `yaml:"start_date,omitempty"`
	EndDate      string         `yaml:"end_date,omitempty"`
	Classes      int            `yaml:"classes,omitempty"`
	Categories   int            `yaml:"categories,omitempty"`
	Errors       int            `yaml:"errors,omitempty"`
	Currencies   map[string]int `yaml:"currencies,omitempty"`
	Other        map[string]any `yaml:"other,omitempty"`
}

// MainCurrency returns the currency with the highest occurrence count. Ties
// break to the lexicographically smallest code so the result is deterministic.
func (s Stats) MainCurrency() string {
	best := ""
	bestCount := 0
	for currency, count := range s.Currencies {
		if count > bestCount || (count == bestCount && (best == "" || currency < best)) {
			best = currency
			bestCount = count
		}
	}
	return best
}

// Show writes a human-readable summary to w.
func (s Stats) Show(w io.Writer) {
	fmt.Fprintf(w, "# Accounts: %d\n", s.Accounts)
	fmt.Fprintf(w, "# Transactions: %d\n", s.Transactions)
	fmt.Fprintf(w, "Date Range: %s to %s\n", s.StartDate, s.EndDate)
	if s.Classes > 0 {
		fmt.Fprintf(w, "# Classes: %d\n", s.Classes)
	}
	if s.Categories > 0 {
		fmt.Fprintf(w, "# Categories: %d\n", s.Categories)
	}
	if s.Errors > 0 {
		fmt.Fprintf(w, "# Errors: %d\n", s.Errors)
	}
	if len(s.Currencies) > 0 {
		codes := make([]string, 0, len(s.Currencies))
		for c := range s.Currencies {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		fmt.Fprint(w, "# Currencies:")
		for i, c := range codes {
			sep := " "
			if i > 0 {
				sep = ", "
			}
			fmt.Fprintf(w, "%s%s: %d", sep, c, s.Currencies[c])
		}
		fmt.Fprintln(w)
	}
}
