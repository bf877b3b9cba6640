// Package convert implements the hub and spoke conversion between the
// supported accounting file formats. Every conversion goes through the
// Ledger Book model: a ToLedgerConverter reads a native format into a Book,
// a FromLedgerConverter renders a Book into a native format.
package convert

import (
	"fmt"
	"os"
	"sort"

	"github.com/nomina-dev/nomina/internal/diag"
	"github.com/nomina-dev/nomina/internal/format"
	"github.com/nomina-dev/nomina/internal/model"
)

// ToLedgerConverter reads a native format file and converts it to a Book.
type ToLedgerConverter interface {
	Load(path string) error
	ConvertToLedger() (*model.Book, error)
	Log() *diag.Log
}

// FromLedgerConverter converts a Book to a native format and renders it.
type FromLedgerConverter interface {
	SetSource(book *model.Book)
	ConvertFromLedger() error
	ToText() (string, error)
	Log() *diag.Log
}

// base carries the per-conversion diagnostic log embedded by every
// converter.
type base struct {
	log diag.Log
}

// Log returns the converter's diagnostic log.
func (b *base) Log() *diag.Log { return &b.log }

// Result is the outcome of one conversion.
type Result struct {
	Book *model.Book
	Text string
	Log  *diag.Log
}

// Options tune a conversion run.
type Options struct {
	DefaultCurrency string
	QIFAccountType  string // type of accounts synthesized while parsing QIF
	Lenient         bool   // tolerate unbalanced transactions
	Prune           bool   // drop accounts no transaction references
	StartDate       string // inclusive transaction date filter bound
	EndDate         string // inclusive transaction date filter bound
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		DefaultCurrency: model.DefaultCurrency,
		QIFAccountType:  string(model.AccountTypeExpense),
		Lenient:         true,
	}
}

// Converter routes between formats using explicit factory tables keyed by
// format acronym.
type Converter struct {
	formats    *format.Registry
	opts       Options
	toLedger   map[string]func() ToLedgerConverter
	fromLedger map[string]func() FromLedgerConverter
}

// New creates a Converter with all built-in formats registered.
func New() *Converter {
	c := &Converter{
		formats: format.NewRegistry(),
		opts:    DefaultOptions(),
	}
	c.toLedger = map[string]func() ToLedgerConverter{
		format.AcronymQIF: func() ToLedgerConverter {
			q := NewQIFToLedger()
			q.Currency = c.opts.DefaultCurrency
			q.AccountType = model.AccountType(c.opts.QIFAccountType)
			return q
		},
		format.AcronymGnuCashXML: func() ToLedgerConverter { return NewGnuCashToLedger() },
		format.AcronymBeancount:  func() ToLedgerConverter { return NewBeancountToLedger() },
		format.AcronymBankingZV:  func() ToLedgerConverter { return NewBankingZVToLedger() },
		format.AcronymMsMoney:    func() ToLedgerConverter { return NewMSMoneyToLedger() },
		format.AcronymLedgerBook: func() ToLedgerConverter { return NewIdentity() },
	}
	c.fromLedger = map[string]func() FromLedgerConverter{
		format.AcronymGnuCashXML: func() FromLedgerConverter { return NewLedgerToGnuCash() },
		format.AcronymBeancount:  func() FromLedgerConverter { return NewLedgerToBeancount() },
		format.AcronymLedgerBook: func() FromLedgerConverter { return NewIdentity() },
	}
	return c
}

// SetOptions replaces the run options. Call before Convert.
func (c *Converter) SetOptions(opts Options) {
	c.opts = opts
}

// Formats exposes the format registry, e.g. for detection commands.
func (c *Converter) Formats() *format.Registry { return c.formats }

// SupportedInputs lists the acronyms accepted as conversion sources.
func (c *Converter) SupportedInputs() []string {
	return sortedKeys(c.toLedger)
}

// SupportedOutputs lists the acronyms accepted as conversion targets.
func (c *Converter) SupportedOutputs() []string {
	return sortedKeys(c.fromLedger)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Convert converts the input file to the named output format. Both
// converter factories are resolved before any input is read, so an
// unsupported direction fails without touching the filesystem.
func (c *Converter) Convert(inputPath string, outputAcronym string) (*Result, error) {
	inputFormat, found, err := c.formats.Detect(inputPath)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("unsupported or unrecognized input format for file: %s", inputPath)
	}

	toFactory := c.toLedger[inputFormat.Acronym]
	if toFactory == nil {
		return nil, fmt.Errorf("unsupported input format: %s", inputFormat.Acronym)
	}
	fromFactory := c.fromLedger[outputAcronym]
	if fromFactory == nil {
		return nil, fmt.Errorf("unsupported output format: %s", outputAcronym)
	}

	toLedger := toFactory()
	if err := toLedger.Load(inputPath); err != nil {
		return nil, err
	}
	book, err := toLedger.ConvertToLedger()
	if err != nil {
		return nil, err
	}

	log := &diag.Log{}
	log.Merge(toLedger.Log())

	if c.opts.StartDate != "" || c.opts.EndDate != "" {
		book, err = book.Filter(c.opts.StartDate, c.opts.EndDate, c.opts.Prune)
		if err != nil {
			return nil, err
		}
	} else if c.opts.Prune {
		if err := book.RemoveUnusedAccounts(); err != nil {
			return nil, err
		}
	}
	if len(book.Transactions) == 0 {
		log.Warn("empty", "conversion of %s produced no transactions", inputPath)
	}
	if _, err := book.CalcBalances(c.opts.Lenient, log); err != nil {
		return nil, err
	}
	for _, key := range sortedKeys(book.Transactions) {
		total := book.Transactions[key].TotalAmount()
		if total.IsZero() {
			continue
		}
		if !c.opts.Lenient {
			return nil, fmt.Errorf("unbalanced transaction %s: splits sum to %s", key, total)
		}
		log.Warn("balance", "unbalanced transaction %s: splits sum to %s", key, total)
	}

	fromLedger := fromFactory()
	fromLedger.SetSource(book)
	if err := fromLedger.ConvertFromLedger(); err != nil {
		return nil, err
	}
	text, err := fromLedger.ToText()
	if err != nil {
		return nil, err
	}

	log.Merge(fromLedger.Log())
	return &Result{Book: book, Text: text, Log: log}, nil
}

// ConvertFile converts inputPath and writes the result to outputPath. An
// empty outputPath writes to stdout.
func (c *Converter) ConvertFile(inputPath, outputAcronym, outputPath string) (*Result, error) {
	result, err := c.Convert(inputPath, outputAcronym)
	if err != nil {
		return nil, err
	}
	if outputPath == "" {
		fmt.Print(result.Text)
		return result, nil
	}
	if err := os.WriteFile(outputPath, []byte(result.Text), 0o644); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	return result, nil
}
