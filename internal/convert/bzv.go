package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nomina-dev/nomina/internal/bzv"
	"github.com/nomina-dev/nomina/internal/model"
)

// BankingZVToLedger converts a Banking ZV JSON export to a Book.
type BankingZVToLedger struct {
	base
	book *bzv.Book
}

// NewBankingZVToLedger creates the converter.
func NewBankingZVToLedger() *BankingZVToLedger {
	return &BankingZVToLedger{}
}

// Load reads one export file; the file base name doubles as the bank
// account name.
func (c *BankingZVToLedger) Load(path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c.book = bzv.NewBook(name)
	return c.book.LoadFile(path, name)
}

// SetBook injects an already loaded book, mainly for tests.
func (c *BankingZVToLedger) SetBook(book *bzv.Book) {
	c.book = book
}

// ConvertToLedger maps bank accounts and the synthesized category accounts,
// then creates one balanced transaction per bank booking: the signed amount
// against the bank account, countered by the category account when known.
func (c *BankingZVToLedger) ConvertToLedger() (*model.Book, error) {
	book := model.NewBook()
	book.Name = c.book.Name
	book.Owner = c.book.Owner

	for _, accountID := range c.book.AccountOrder {
		ba := c.book.Accounts[accountID]
		accountType := model.AccountTypeBank
		if strings.Contains(ba.ID, ":") || ba.ParentID != "" {
			accountType = model.AccountTypeCategory
		}
		book.AddAccount(&model.Account{
			ID:       ba.ID,
			Name:     ba.Name,
			Type:     accountType,
			Currency: model.DefaultCurrency,
			ParentID: ba.ParentID,
		})
	}

	for _, bt := range c.book.Transactions {
		amount, err := bt.SignedAmount()
		if err != nil {
			c.log.Warn("amount", "transaction %s: %v", bt.Id, err)
			continue
		}

		description := bt.BookgTxt
		if description == "" {
			description = "No description"
		}
		tx := &model.Transaction{
			ISODate:     bt.BookgDt,
			Description: description,
			Memo:        bt.RmtInf,
			Splits: []model.Split{
				{Amount: amount, AccountID: bt.AcctId, Memo: bt.RmtInf},
			},
		}
		if bt.Category != "" {
			tx.Splits = append(tx.Splits, model.Split{
				Amount:    amount.Neg(),
				AccountID: bt.Category,
				Memo:      bt.RmtInf,
			})
		}
		book.Transactions[fmt.Sprintf("%s:%s", bt.BookgDt, bt.Id)] = tx
	}
	return book, nil
}
