package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/diag"
)

// FileType is the marker string that identifies a ledger book YAML file.
const FileType = "NOMINA-LEDGER-BOOK-YAML"

// Version of the ledger book YAML layout.
const Version = "0.1"

// Book is the canonical intermediate model every format converts through.
type Book struct {
	FileType     string                  `yaml:"file_type"`
	Version      string                  `yaml:"version"`
	Name         string                  `yaml:"name,omitempty"`
	Owner        string                  `yaml:"owner,omitempty"`
	Since        string                  `yaml:"since,omitempty"`
	URL          string                  `yaml:"url,omitempty"`
	Accounts     map[string]*Account     `yaml:"accounts"`
	Transactions map[string]*Transaction `yaml:"transactions"`
}

// NewBook creates an empty Book with the canonical file type marker.
func NewBook() *Book {
	return &Book{
		FileType:     FileType,
		Version:      Version,
		Accounts:     make(map[string]*Account),
		Transactions: make(map[string]*Transaction),
	}
}

// AddAccount registers the account under its ID, replacing any previous entry.
func (b *Book) AddAccount(a *Account) *Account {
	if b.Accounts == nil {
		b.Accounts = make(map[string]*Account)
	}
	b.Accounts[a.ID] = a
	return a
}

// LookupAccount returns the account for the given ID, or nil.
func (b *Book) LookupAccount(id string) *Account {
	return b.Accounts[id]
}

// CreateAccount creates an account named name below parentID, synthesizing the
// colon-joined ID. Missing parents are auto-created from the parent path
// segments, defaulting to the child's account type. Existing accounts are
// returned unchanged so repeated declarations cannot create duplicates.
func (b *Book) CreateAccount(name string, accountType AccountType, parentID string) (*Account, error) {
	if name == "" {
		return nil, fmt.Errorf("account name must not be empty")
	}

	id := name
	if parentID != "" {
		if b.LookupAccount(parentID) == nil {
			b.createParentChain(parentID, accountType)
		}
		id = parentID + ":" + name
	}

	if existing := b.LookupAccount(id); existing != nil {
		return existing, nil
	}

	account := &Account{
		ID:       id,
		Name:     name,
		Type:     accountType,
		Currency: DefaultCurrency,
		ParentID: parentID,
	}
	b.AddAccount(account)
	return account, nil
}

// createParentChain materializes every missing ancestor of the colon path.
func (b *Book) createParentChain(path string, accountType AccountType) {
	segments := strings.Split(path, ":")
	current := ""
	parent := ""
	for _, segment := range segments {
		if current == "" {
			current = segment
		} else {
			parent = current
			current = current + ":" + segment
		}
		if b.LookupAccount(current) == nil {
			b.AddAccount(&Account{
				ID:       current,
				Name:     segment,
				Type:     accountType,
				Currency: DefaultCurrency,
				ParentID: parent,
			})
		}
	}
}

// FQAccountName joins the names of the account's ancestors with the separator,
// for formats that need a single flat qualified name.
func (b *Book) FQAccountName(a *Account, separator string) string {
	if a.ParentID != "" {
		if parent := b.LookupAccount(a.ParentID); parent != nil {
			return b.FQAccountName(parent, separator) + separator + a.Name
		}
	}
	return a.Name
}

// CalcBalances computes per-account balances. A nil entry means the account
// was never referenced by any split, directly or through a descendant.
// Propagation is bottom-up ordered by depth so hierarchies of any depth settle
// in a single call. In lenient mode splits referencing unknown accounts are
// reported on log (which may be nil) and skipped; otherwise they are an error.
func (b *Book) CalcBalances(lenient bool, log *diag.Log) (map[string]*decimal.Decimal, error) {
	balances := make(map[string]*decimal.Decimal, len(b.Accounts))
	for id := range b.Accounts {
		balances[id] = nil
	}

	add := func(id string, amount decimal.Decimal) {
		if balances[id] == nil {
			v := amount
			balances[id] = &v
		} else {
			v := balances[id].Add(amount)
			balances[id] = &v
		}
	}

	for txID, tx := range b.Transactions {
		for si, split := range tx.Splits {
			if _, known := balances[split.AccountID]; !known {
				msg := fmt.Sprintf("split %d of transaction %s references unknown account %q", si+1, txID, split.AccountID)
				if !lenient {
					return nil, fmt.Errorf("%s", msg)
				}
				if log != nil {
					log.Warn("split", "%s", msg)
				}
				continue
			}
			add(split.AccountID, split.Amount)
		}
	}

	// Deepest accounts first so each balance is final before it is folded
	// into its parent.
	ids := make([]string, 0, len(b.Accounts))
	for id := range b.Accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := b.accountDepth(ids[i]), b.accountDepth(ids[j])
		if di != dj {
			return di > dj
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		account := b.Accounts[id]
		if account.ParentID == "" || balances[id] == nil {
			continue
		}
		if _, known := balances[account.ParentID]; !known {
			continue
		}
		add(account.ParentID, *balances[id])
	}

	return balances, nil
}

// accountDepth counts the ancestors of the account, guarding against cycles.
func (b *Book) accountDepth(id string) int {
	depth := 0
	seen := map[string]bool{id: true}
	for {
		account := b.Accounts[id]
		if account == nil || account.ParentID == "" || seen[account.ParentID] {
			return depth
		}
		id = account.ParentID
		seen[id] = true
		depth++
	}
}

// RemoveUnusedAccounts deletes every account whose balance is nil, i.e. not
// referenced by any split anywhere in its subtree.
func (b *Book) RemoveUnusedAccounts() error {
	balances, err := b.CalcBalances(true, nil)
	if err != nil {
		return err
	}
	for id, balance := range balances {
		if balance == nil {
			delete(b.Accounts, id)
		}
	}
	return nil
}

// Filter returns a deep copy of the book retaining only transactions whose
// date falls within [startDate, endDate]; either bound may be empty for an
// open end. With prune set, accounts left unused by the filtering are removed.
func (b *Book) Filter(startDate, endDate string, prune bool) (*Book, error) {
	filtered := b.Copy()
	filtered.Transactions = make(map[string]*Transaction)

	for id, tx := range b.Transactions {
		if tx.ISODate == "" {
			continue
		}
		date := tx.Date()
		inRange := (startDate == "" || date >= startDate) && (endDate == "" || date <= endDate)
		if inRange {
			filtered.Transactions[id] = copyTransaction(tx)
		}
	}

	if prune {
		if err := filtered.RemoveUnusedAccounts(); err != nil {
			return nil, err
		}
	}
	return filtered, nil
}

// Copy returns a deep copy of the book.
func (b *Book) Copy() *Book {
	out := &Book{
		FileType:     b.FileType,
		Version:      b.Version,
		Name:         b.Name,
		Owner:        b.Owner,
		Since:        b.Since,
		URL:          b.URL,
		Accounts:     make(map[string]*Account, len(b.Accounts)),
		Transactions: make(map[string]*Transaction, len(b.Transactions)),
	}
	for id, a := range b.Accounts {
		copied := *a
		out.Accounts[id] = &copied
	}
	for id, tx := range b.Transactions {
		out.Transactions[id] = copyTransaction(tx)
	}
	return out
}

func copyTransaction(tx *Transaction) *Transaction {
	copied := *tx
	copied.Splits = make([]Split, len(tx.Splits))
	copy(copied.Splits, tx.Splits)
	return &copied
}

// Stats computes a read-only snapshot of the book. The currency histogram is
// counted per account for every source format.
func (b *Book) Stats() Stats {
	stats := Stats{
		Accounts:     len(b.Accounts),
		Transactions: len(b.Transactions),
		Currencies:   make(map[string]int),
	}

	for _, tx := range b.Transactions {
		if tx.ISODate == "" {
			continue
		}
		date := tx.Date()
		if stats.StartDate == "" || date < stats.StartDate {
			stats.StartDate = date
		}
		if stats.EndDate == "" || date > stats.EndDate {
			stats.EndDate = date
		}
	}

	for _, a := range b.Accounts {
		currency := a.Currency
		if currency == "" {
			currency = DefaultCurrency
		}
		stats.Currencies[currency]++
	}

	return stats
}
