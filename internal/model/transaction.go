package model

import "github.com/shopspring/decimal"

// Split is one leg of a transaction, pairing an amount with the account it
// affects. AccountID should resolve within the enclosing Book; unresolvable
// targets are routed to the Dangling account by the converters.
type Split struct {
	Amount     decimal.Decimal `yaml:"amount"`
	AccountID  string          `yaml:"account_id"`
	Memo       string          `yaml:"memo,omitempty"`
	Reconciled bool            `yaml:"reconciled,omitempty"`
}

// Transaction is a dated multi-split entry. Under the double-entry invariant
// the split amounts sum to zero; a non-zero total indicates a conversion
// defect, not a valid state.
type Transaction struct {
	ISODate     string  `yaml:"isodate"`
	Description string  `yaml:"description,omitempty"`
	Splits      []Split `yaml:"splits"`
	Payee       string  `yaml:"payee,omitempty"`
	Memo        string  `yaml:"memo,omitempty"`
}

// TotalAmount sums the split amounts.
func (t *Transaction) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, s := range t.Splits {
		total = total.Add(s.Amount)
	}
	return total
}

// Date returns the date part of ISODate, dropping any time-of-day suffix.
func (t *Transaction) Date() string {
	for i := 0; i < len(t.ISODate); i++ {
		if t.ISODate[i] == ' ' {
			return t.ISODate[:i]
		}
	}
	return t.ISODate
}
