package convert

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/dateutil"
	"github.com/nomina-dev/nomina/internal/model"
	"github.com/nomina-dev/nomina/internal/msmoney"
)

// MSMoneyToLedger converts a Microsoft Money dump to a Book.
type MSMoneyToLedger struct {
	base
	db *msmoney.Database
}

// NewMSMoneyToLedger creates the converter.
func NewMSMoneyToLedger() *MSMoneyToLedger {
	return &MSMoneyToLedger{}
}

// Load reads the Money ZIP archive or dump directory.
func (c *MSMoneyToLedger) Load(path string) error {
	c.db = msmoney.NewDatabase()
	return c.db.Load(path)
}

// SetDatabase injects an already loaded database, mainly for tests.
func (c *MSMoneyToLedger) SetDatabase(db *msmoney.Database) {
	c.db = db
}

// ConvertToLedger maps ACCT rows to accounts keyed by their hacct handle and
// TRN rows to single-split transactions against those accounts.
func (c *MSMoneyToLedger) ConvertToLedger() (*model.Book, error) {
	book := model.NewBook()
	if c.db.Header != nil {
		book.Name = c.db.Header.Name
		book.Since = c.db.Header.Date
	}

	for _, row := range c.db.Rows("ACCT") {
		accountType := row.Str("acct_type")
		if accountType == "" {
			accountType = string(model.AccountTypeExpense)
		}
		currency := row.Str("currency")
		if currency == "" {
			currency = model.DefaultCurrency
		}
		book.AddAccount(&model.Account{
			ID:          row.Str("hacct"),
			Name:        row.Str("szFull"),
			Type:        model.AccountType(accountType),
			Description: row.Str("desc"),
			Currency:    currency,
		})
	}
	c.log.Info("accounts", "accounts created: %d", len(book.Accounts))

	for _, row := range c.db.Rows("TRN") {
		handle := row.Str("htrn")
		accountID := row.Str("hacct")
		amount, ok := row.Float("amt")
		if !ok {
			c.log.Warn("amount", "transaction %s has no amount", handle)
			continue
		}
		date, _, _ := strings.Cut(row.Str("dt"), " ")
		isodate, ok := dateutil.ParseDate(date)
		if !ok {
			c.log.Warn("date", "transaction %s has unparseable date %q", handle, row.Str("dt"))
			continue
		}

		value := decimal.NewFromFloat(amount)
		tx := &model.Transaction{
			ISODate:     isodate,
			Description: fmt.Sprintf("Transaction %s", handle),
			Memo:        fmt.Sprintf("Amount: %s", value.String()),
			Splits: []model.Split{
				{Amount: value, AccountID: accountID, Memo: fmt.Sprintf("Transaction %s", handle)},
			},
		}
		book.Transactions[fmt.Sprintf("%s:%s", isodate, handle)] = tx
	}
	c.log.Info("transactions", "transactions created: %d", len(book.Transactions))
	return book, nil
}
