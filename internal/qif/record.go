package qif

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/dateutil"
)

// ParseRecord carries line-range context and per-field errors for diagnostics.
// Parsing is resilient: errors are collected here instead of aborting.
type ParseRecord struct {
	StartLine int
	EndLine   int
	Errors    map[string]error
}

func newParseRecord(startLine, endLine int) ParseRecord {
	return ParseRecord{StartLine: startLine, EndLine: endLine, Errors: make(map[string]error)}
}

// setError records an error under the given field key.
func (r *ParseRecord) setError(field string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]error)
	}
	r.Errors[field] = err
}

// ErrorRecord is a line the parser could not interpret at all.
type ErrorRecord struct {
	ParseRecord
	Line string
}

// Account is a QIF account declaration. IDs are full colon paths; the parser
// synthesizes missing ancestors so every parent chain resolves.
type Account struct {
	ParseRecord
	ID          string
	Name        string
	Description string
	Type        string
	Currency    string
	ParentID    string
}

// Category is a QIF category declaration (!Type:Cat).
type Category struct {
	ParseRecord
	Name        string
	Description string
}

// Class is a QIF class declaration (!Type:Class).
type Class struct {
	ParseRecord
	Name        string
	Description string
}

// Transaction is a single QIF transaction record. String fields hold the raw
// values; normalized forms live in ISODate, AmountValue and SplitAmountValues
// with failures recorded in Errors.
type Transaction struct {
	ParseRecord
	ISODate string
	Amount  string
	Name    string // Vorgang, folded into Memo on normalize
	Payee   string
	Memo    string
	Cleared string
	Address string

	Category        string
	SplitCategories []SplitCategory
	SplitMemos      []string
	SplitAmounts    []string

	AmountValue       *decimal.Decimal
	SplitAmountValues []decimal.Decimal

	Account *Account
}

// normalize parses the date and amounts and folds the Vorgang name into the
// memo. Failures are recorded per field; raw values are retained.
func (t *Transaction) normalize() {
	if t.ISODate != "" {
		if iso, ok := dateutil.ParseDate(t.ISODate); ok {
			t.ISODate = iso
		} else {
			t.setError("date", fmt.Errorf("unparseable date %q", t.ISODate))
		}
	}

	if t.Amount != "" {
		if amount, err := ParseAmount(t.Amount); err == nil {
			t.AmountValue = &amount
		} else {
			t.setError("amount", err)
		}
	}

	if t.Name != "" {
		if t.Memo != "" {
			t.Memo = t.Name + ":" + t.Memo
		} else {
			t.Memo = t.Name
		}
	}

	t.SplitAmountValues = make([]decimal.Decimal, 0, len(t.SplitAmounts))
	for i, raw := range t.SplitAmounts {
		amount, err := ParseAmount(raw)
		if err != nil {
			t.setError(fmt.Sprintf("split%d", i), err)
			amount = decimal.Zero
		}
		t.SplitAmountValues = append(t.SplitAmountValues, amount)
	}
}

// TotalSplitAmount sums the parsed split amounts.
func (t *Transaction) TotalSplitAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range t.SplitAmountValues {
		total = total.Add(a)
	}
	return total
}

// HasSplits reports whether the record declared S/$ split fields.
func (t *Transaction) HasSplits() bool {
	return len(t.SplitCategories) > 0 && len(t.SplitAmountValues) > 0
}

var nonAmountChars = regexp.MustCompile(`[^\d,.-]`)

// ParseAmount parses a QIF amount string. Currency symbols and whitespace are
// stripped; a comma without a dot is a decimal comma, a comma next to a dot is
// a thousands separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := nonAmountChars.ReplaceAllString(s, "")
	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && !hasDot:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount %q", s)
	}
	return amount, nil
}
