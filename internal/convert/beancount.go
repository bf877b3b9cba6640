package convert

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/robinvdvleuten/beancount/ast"
	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/beancount"
	"github.com/nomina-dev/nomina/internal/dateutil"
	"github.com/nomina-dev/nomina/internal/id"
	"github.com/nomina-dev/nomina/internal/model"
)

// accountTypeNamespaces maps ledger account types to the Beancount root
// account namespaces.
var accountTypeNamespaces = map[string]string{
	"ROOT":      "Equity",
	"BANK":      "Assets",
	"EXPENSE":   "Expenses",
	"INCOME":    "Income",
	"LIABILITY": "Liabilities",
	"EQUITY":    "Equity",
	"ASSET":     "Assets",
}

// BeancountToLedger converts a Beancount file to a Book.
type BeancountToLedger struct {
	base
	ledger beancount.Ledger
}

// NewBeancountToLedger creates the converter.
func NewBeancountToLedger() *BeancountToLedger {
	return &BeancountToLedger{}
}

// Load parses the Beancount input file.
func (c *BeancountToLedger) Load(path string) error {
	return c.ledger.LoadFile(context.Background(), path)
}

// SetLedger injects already parsed directives, mainly for tests.
func (c *BeancountToLedger) SetLedger(ledger beancount.Ledger) {
	c.ledger = ledger
}

// ConvertToLedger maps Open directives to accounts, using the first name
// segment as the account type, and Transaction directives to transactions.
func (c *BeancountToLedger) ConvertToLedger() (*model.Book, error) {
	book := model.NewBook()

	for _, directive := range c.ledger.Directives {
		switch entry := directive.(type) {
		case *ast.Open:
			c.convertAccount(book, entry)
		case *ast.Transaction:
			c.convertTransaction(book, entry)
		}
	}
	return book, nil
}

func (c *BeancountToLedger) convertAccount(book *model.Book, open *ast.Open) {
	fqName := string(open.Account)
	segments := strings.Split(fqName, ":")
	accountType := strings.ToUpper(segments[0])
	name := strings.Join(segments[1:], ":")
	if name == "" {
		name = fqName
	}

	currency := model.DefaultCurrency
	if len(open.ConstraintCurrencies) > 0 {
		currency = open.ConstraintCurrencies[0]
	}

	parentID := ""
	if i := strings.LastIndex(fqName, ":"); i > 0 {
		parentID = fqName[:i]
	}
	if parentID != "" && book.LookupAccount(parentID) == nil {
		parentID = ""
	}

	book.AddAccount(&model.Account{
		ID:       fqName,
		Name:     name,
		Type:     model.AccountType(accountType),
		Currency: currency,
		ParentID: parentID,
	})
}

func (c *BeancountToLedger) convertTransaction(book *model.Book, entry *ast.Transaction) {
	if entry.Date == nil {
		c.log.Warn("date", "transaction without date skipped")
		return
	}
	isodate := entry.Date.Time.Format(dateutil.ISOLayout)

	tx := &model.Transaction{
		ISODate:     isodate,
		Description: entry.Narration.Value,
		Payee:       entry.Payee.Value,
	}
	sum := decimal.Zero
	inferred := -1
	for _, posting := range entry.Postings {
		if posting.Amount == nil {
			// at most one posting may elide its amount; it balances the rest
			if inferred >= 0 {
				c.log.Warn("split", "second posting without amount for account %q skipped", string(posting.Account))
				continue
			}
			inferred = len(tx.Splits)
			tx.Splits = append(tx.Splits, model.Split{AccountID: string(posting.Account)})
			continue
		}
		amount, err := decimal.NewFromString(posting.Amount.Value)
		if err != nil {
			c.log.Warn("split", "unparseable amount %q for account %q", posting.Amount.Value, string(posting.Account))
			continue
		}
		sum = sum.Add(amount)
		tx.Splits = append(tx.Splits, model.Split{
			Amount:    amount,
			AccountID: string(posting.Account),
		})
	}
	if inferred >= 0 {
		tx.Splits[inferred].Amount = sum.Neg()
	}
	book.Transactions[id.HashKey(isodate, tx.Description)] = tx
}

// LedgerToBeancount converts a Book to Beancount directives.
type LedgerToBeancount struct {
	base
	book      *model.Book
	ledger    beancount.Ledger
	stats     model.Stats
	startDate string
}

// NewLedgerToBeancount creates the converter.
func NewLedgerToBeancount() *LedgerToBeancount {
	return &LedgerToBeancount{}
}

// SetSource sets the Book to convert.
func (c *LedgerToBeancount) SetSource(book *model.Book) {
	c.book = book
}

// Ledger returns the converted directives.
func (c *LedgerToBeancount) Ledger() *beancount.Ledger {
	return &c.ledger
}

// accountName derives the namespaced Beancount account name, or "" for
// accounts that collide with a bare namespace root.
func (c *LedgerToBeancount) accountName(account *model.Account) string {
	namespace, ok := accountTypeNamespaces[string(account.Type)]
	if !ok {
		namespace = "Expenses"
	}
	fqName := beancount.SanitizeAccountName(c.book.FQAccountName(account, ":"))
	for _, root := range accountTypeNamespaces {
		if fqName == root {
			return ""
		}
	}
	return namespace + ":" + fqName
}

// ConvertFromLedger emits one Open directive per account, dated at the
// book's start date, followed by the transactions.
func (c *LedgerToBeancount) ConvertFromLedger() error {
	c.ledger = beancount.Ledger{}
	c.stats = c.book.Stats()
	c.startDate = c.stats.StartDate
	if c.startDate == "" {
		c.startDate = time.Now().Format(dateutil.ISOLayout)
	}
	openDate, err := ast.NewDate(c.startDate)
	if err != nil {
		return err
	}

	accountIDs := make([]string, 0, len(c.book.Accounts))
	for accountID := range c.book.Accounts {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)
	for _, accountID := range accountIDs {
		account := c.book.Accounts[accountID]
		name := c.accountName(account)
		if name == "" {
			continue
		}
		beanAccount, err := ast.NewAccount(name)
		if err != nil {
			c.log.Warn("account", "invalid account name %q: %v", name, err)
			continue
		}
		var currencies []string
		if account.Currency != "" {
			currencies = []string{account.Currency}
		}
		c.ledger.Add(&ast.Open{Date: openDate, Account: beanAccount, ConstraintCurrencies: currencies})
	}

	txKeys := make([]string, 0, len(c.book.Transactions))
	for key := range c.book.Transactions {
		txKeys = append(txKeys, key)
	}
	sort.Strings(txKeys)
	for _, key := range txKeys {
		c.ledger.Add(c.convertTransaction(c.book.Transactions[key]))
	}
	return nil
}

func (c *LedgerToBeancount) convertTransaction(lt *model.Transaction) ast.Directive {
	isodate, ok := dateutil.ParseDate(lt.ISODate)
	if !ok {
		c.log.Warn("date", "unable to parse date %q", lt.ISODate)
		return nil
	}
	date, err := ast.NewDate(isodate)
	if err != nil {
		c.log.Warn("date", "unable to parse date %q: %v", isodate, err)
		return nil
	}

	var postings []*ast.Posting
	for _, split := range lt.Splits {
		account := c.book.LookupAccount(split.AccountID)
		if account == nil {
			c.log.Error("split", "invalid split account %q", split.AccountID)
			continue
		}
		name := c.accountName(account)
		if name == "" {
			c.log.Warn("split", "split account %q collides with a namespace root", split.AccountID)
			continue
		}
		beanAccount, err := ast.NewAccount(name)
		if err != nil {
			c.log.Warn("split", "invalid account name %q: %v", name, err)
			continue
		}
		currency := account.Currency
		if currency == "" {
			currency = model.DefaultCurrency
		}
		postings = append(postings, ast.NewPosting(beanAccount, ast.WithAmount(split.Amount.String(), currency)))
	}
	if len(postings) == 0 {
		c.log.Warn("transaction", "skipping transaction with no valid postings: %s", lt.Description)
		return nil
	}

	tx := ast.NewTransaction(date, lt.Description, ast.WithPostings(postings...))
	tx.Payee = ast.NewRawString(lt.Payee)
	return tx
}

// ToText renders the directives with the title and currency preamble.
func (c *LedgerToBeancount) ToText() (string, error) {
	title := c.book.Name
	if title == "" {
		title = "Converted Ledger"
	}
	endDate := c.stats.EndDate
	if endDate == "" {
		endDate = "Unknown"
	}
	preamble := &beancount.Preamble{
		StartDate: c.startDate,
		EndDate:   endDate,
		Title:     title,
		Currency:  c.stats.MainCurrency(),
	}
	return c.ledger.Render(preamble), nil
}
