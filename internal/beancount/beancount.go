// Package beancount wraps the Beancount directive parser with the loading,
// rendering and account name handling the converters need.
package beancount

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/robinvdvleuten/beancount/ast"
	"github.com/robinvdvleuten/beancount/parser"

	"github.com/nomina-dev/nomina/internal/model"
)

// Ledger holds the parsed or generated directives of one Beancount file.
type Ledger struct {
	Directives []ast.Directive
}

// LoadFile parses a Beancount file into directives.
func (l *Ledger) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("opening beancount file: %w", err)
	}
	return l.ParseString(ctx, string(data))
}

// ParseString parses Beancount source text into directives.
func (l *Ledger) ParseString(ctx context.Context, src string) error {
	tree, err := parser.ParseString(ctx, src)
	if err != nil {
		return fmt.Errorf("parsing beancount source: %w", err)
	}
	l.Directives = tree.Directives
	return nil
}

// Add appends a directive; nil directives are skipped.
func (l *Ledger) Add(directive ast.Directive) {
	if directive != nil {
		l.Directives = append(l.Directives, directive)
	}
}

// Stats summarizes the directives.
func (l *Ledger) Stats() model.Stats {
	stats := model.Stats{
		Currencies: map[string]int{},
	}
	accounts := map[string]bool{}
	for _, directive := range l.Directives {
		switch entry := directive.(type) {
		case *ast.Open:
			accounts[string(entry.Account)] = true
			if len(entry.ConstraintCurrencies) > 0 {
				stats.Currencies[entry.ConstraintCurrencies[0]]++
			}
		case *ast.Transaction:
			stats.Transactions++
			if entry.Date == nil {
				continue
			}
			iso := entry.Date.Time.Format("2006-01-02")
			if stats.StartDate == "" || iso < stats.StartDate {
				stats.StartDate = iso
			}
			if stats.EndDate == "" || iso > stats.EndDate {
				stats.EndDate = iso
			}
		}
	}
	stats.Accounts = len(accounts)
	return stats
}

var invalidAccountChars = regexp.MustCompile(`[^A-Za-z0-9:-]`)

// SanitizeAccountName makes an account name acceptable to Beancount:
// brackets are dropped, other invalid characters become dashes and each
// colon segment starts with an upper case letter.
func SanitizeAccountName(name string) string {
	name = strings.ReplaceAll(name, "[", "")
	name = strings.ReplaceAll(name, "]", "")
	name = invalidAccountChars.ReplaceAllString(name, "-")
	segments := strings.Split(name, ":")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		segments[i] = strings.ToUpper(segment[:1]) + segment[1:]
	}
	return strings.Join(segments, ":")
}

// Preamble is the comment and option header written before the directives.
type Preamble struct {
	StartDate string
	EndDate   string
	Title     string
	Currency  string
}

// Header renders the preamble.
func (p *Preamble) Header() string {
	var sb strings.Builder
	sb.WriteString(";; -*- mode: org; mode: beancount; -*-\n")
	sb.WriteString(";; Generated by nomina\n")
	fmt.Fprintf(&sb, ";; Dates: %s - %s\n\n", p.StartDate, p.EndDate)
	sb.WriteString("* Options\n\n")
	fmt.Fprintf(&sb, "option %q %q\n", "title", p.Title)
	fmt.Fprintf(&sb, "option %q %q\n\n", "operating_currency", p.Currency)
	return sb.String()
}

// Render prints the directives as Beancount text, preceded by the preamble
// when one is given.
func (l *Ledger) Render(preamble *Preamble) string {
	var sb strings.Builder
	if preamble != nil {
		sb.WriteString(preamble.Header())
	}
	sb.WriteString("* Entries\n\n")
	for _, directive := range l.Directives {
		switch entry := directive.(type) {
		case *ast.Open:
			renderOpen(&sb, entry)
		case *ast.Transaction:
			renderTransaction(&sb, entry)
		}
	}
	return sb.String()
}

func renderOpen(sb *strings.Builder, open *ast.Open) {
	sb.WriteString(open.Date.Time.Format("2006-01-02"))
	sb.WriteString(" open ")
	sb.WriteString(string(open.Account))
	if len(open.ConstraintCurrencies) > 0 {
		sb.WriteString(" " + strings.Join(open.ConstraintCurrencies, ","))
	}
	sb.WriteString("\n")
}

func renderTransaction(sb *strings.Builder, tx *ast.Transaction) {
	sb.WriteString("\n")
	sb.WriteString(tx.Date.Time.Format("2006-01-02"))
	flag := tx.Flag
	if flag == "" {
		flag = "*"
	}
	sb.WriteString(" " + flag)
	if payee := tx.Payee.Value; payee != "" {
		fmt.Fprintf(sb, " %q", payee)
	}
	fmt.Fprintf(sb, " %q\n", tx.Narration.Value)
	for _, posting := range tx.Postings {
		sb.WriteString("  " + string(posting.Account))
		if posting.Amount != nil {
			sb.WriteString("  " + posting.Amount.Value + " " + posting.Amount.Currency)
		}
		sb.WriteString("\n")
	}
}
