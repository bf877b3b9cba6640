// Package bzv reads Banking ZV JSON exports, the per-account transaction
// lists produced by Subsembly banking software.
package bzv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/model"
)

// Transaction is one booked bank transaction. Field names follow the export's
// ISO 20022 style abbreviations.
type Transaction struct {
	Id               string `json:"Id"`
	AcctId           string `json:"AcctId"`
	OwnrAcctCcy      string `json:"OwnrAcctCcy"`
	OwnrAcctIBAN     string `json:"OwnrAcctIBAN,omitempty"`
	OwnrAcctNo       string `json:"OwnrAcctNo"`
	OwnrAcctBIC      string `json:"OwnrAcctBIC,omitempty"`
	OwnrAcctBankCode string `json:"OwnrAcctBankCode"`
	BookgDt          string `json:"BookgDt"`
	ValDt            string `json:"ValDt,omitempty"`
	Amt              string `json:"Amt"`
	AmtCcy           string `json:"AmtCcy"`
	CdtDbtInd        string `json:"CdtDbtInd"`
	RmtInf           string `json:"RmtInf,omitempty"`
	BookgTxt         string `json:"BookgTxt,omitempty"`
	PrimaNotaNo      string `json:"PrimaNotaNo,omitempty"`
	BankRef          string `json:"BankRef,omitempty"`
	BkTxCd           string `json:"BkTxCd,omitempty"`
	BookgSts         string `json:"BookgSts"`
	GVC              string `json:"GVC,omitempty"`
	Category         string `json:"Category,omitempty"`
	ReadStatus       bool   `json:"ReadStatus"`
	Flag             string `json:"Flag"`
}

// SignedAmount returns the booked amount with the debit/credit indicator
// applied: DBIT amounts are negative.
func (t *Transaction) SignedAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(t.Amt)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount %q: %w", t.Amt, err)
	}
	if t.CdtDbtInd == "DBIT" {
		amount = amount.Neg()
	}
	return amount, nil
}

// Account is a bank account or a category account derived from the
// transactions.
type Account struct {
	ID       string
	Name     string
	ParentID string
}

// Book collects the transactions and accounts of one or more Banking ZV
// exports.
type Book struct {
	Name         string
	Owner        string
	Accounts     map[string]*Account
	Transactions []*Transaction

	// declaration order of account IDs, for deterministic conversion output
	AccountOrder []string
}

// NewBook creates an empty book.
func NewBook(name string) *Book {
	return &Book{
		Name:     name,
		Accounts: make(map[string]*Account),
	}
}

// ReadTransactions decodes a JSON array of transactions.
func ReadTransactions(r io.Reader) ([]*Transaction, error) {
	var txs []*Transaction
	if err := json.NewDecoder(r).Decode(&txs); err != nil {
		return nil, fmt.Errorf("decoding banking zv json: %w", err)
	}
	return txs, nil
}

// LoadFile loads one export file into the book. The bank account is
// registered under the AcctId of its transactions, named accountName, and
// category accounts are synthesized from the transaction categories.
func (b *Book) LoadFile(path string, accountName string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening banking zv file: %w", err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return err
	}
	b.Transactions = append(b.Transactions, txs...)

	if len(txs) > 0 {
		b.addAccount(&Account{ID: txs[0].AcctId, Name: accountName})
	}
	b.createCategoryAccounts(txs)
	return nil
}

func (b *Book) addAccount(account *Account) {
	if _, exists := b.Accounts[account.ID]; exists {
		return
	}
	b.Accounts[account.ID] = account
	b.AccountOrder = append(b.AccountOrder, account.ID)
}

// AddCategoryAccount registers an account for each segment of a colon
// separated category path.
func (b *Book) AddCategoryAccount(category string) {
	segments := strings.Split(category, ":")
	currentID := ""
	parentID := ""
	for _, segment := range segments {
		if currentID == "" {
			currentID = segment
		} else {
			parentID = currentID
			currentID = currentID + ":" + segment
		}
		b.addAccount(&Account{ID: currentID, Name: segment, ParentID: parentID})
	}
}

func (b *Book) createCategoryAccounts(txs []*Transaction) {
	for _, tx := range txs {
		if tx.Category != "" {
			b.AddCategoryAccount(tx.Category)
		}
	}
}

// Stats summarizes the book content.
func (b *Book) Stats() model.Stats {
	stats := model.Stats{
		Accounts:     len(b.Accounts),
		Transactions: len(b.Transactions),
		Currencies:   map[string]int{},
		Other:        map[string]any{"name": b.Name, "owner": b.Owner},
	}
	categories := map[string]bool{}
	for _, tx := range b.Transactions {
		stats.Currencies[tx.AmtCcy]++
		if tx.Category != "" {
			categories[tx.Category] = true
		}
		if tx.BookgDt == "" {
			continue
		}
		if stats.StartDate == "" || tx.BookgDt < stats.StartDate {
			stats.StartDate = tx.BookgDt
		}
		if stats.EndDate == "" || tx.BookgDt > stats.EndDate {
			stats.EndDate = tx.BookgDt
		}
	}
	stats.Categories = len(categories)
	return stats
}
