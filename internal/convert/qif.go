package convert

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/model"
	"github.com/nomina-dev/nomina/internal/qif"
)

// QIFToLedger converts a parsed QIF file to a Book.
type QIFToLedger struct {
	base
	parser *qif.Parser

	// parser defaults, applied on Load when set
	Currency    string
	AccountType model.AccountType
}

// NewQIFToLedger creates the converter.
func NewQIFToLedger() *QIFToLedger {
	return &QIFToLedger{}
}

// Load parses the QIF input file.
func (c *QIFToLedger) Load(path string) error {
	c.parser = qif.NewParser()
	if c.Currency != "" {
		c.parser.Currency = c.Currency
	}
	if c.AccountType != "" {
		c.parser.DefaultAccountType = c.AccountType
	}
	return c.parser.ParseFile(path)
}

// SetParser injects an already populated parser, mainly for tests.
func (c *QIFToLedger) SetParser(p *qif.Parser) {
	c.parser = p
}

// ConvertToLedger builds the Book: root accounts for classes, categories and
// unresolvable split targets, the QIF account tree, and double-entry
// transactions derived from the single-entry QIF records.
func (c *QIFToLedger) ConvertToLedger() (*model.Book, error) {
	book := model.NewBook()
	book.Name = c.parser.Name

	if err := c.createAccounts(book); err != nil {
		return nil, err
	}

	for _, key := range c.parser.TransactionOrder {
		qt := c.parser.Transactions[key]
		book.Transactions[key] = &model.Transaction{
			ISODate:     qt.ISODate,
			Description: qt.Memo,
			Splits:      c.calcSplits(qt, book),
			Payee:       qt.Payee,
			Memo:        qt.Memo,
		}
	}
	return book, nil
}

// createAccounts sets up the account lookup: fixed roots first, then the QIF
// accounts, classes and categories.
func (c *QIFToLedger) createAccounts(book *model.Book) error {
	for _, root := range []struct {
		name        string
		accountType model.AccountType
	}{
		{"Class", model.AccountTypeClass},
		{"Category", model.AccountTypeCategory},
		{"Dangling", model.AccountTypeError},
	} {
		if _, err := book.CreateAccount(root.name, root.accountType, ""); err != nil {
			return err
		}
	}

	for _, accountID := range c.parser.AccountOrder {
		qa := c.parser.Accounts[accountID]
		book.AddAccount(&model.Account{
			ID:          qa.ID,
			Name:        qa.Name,
			Type:        model.AccountType(qa.Type),
			Description: qa.Description,
			Currency:    qa.Currency,
			ParentID:    qa.ParentID,
		})
	}

	for name := range c.parser.Classes {
		if _, err := book.CreateAccount(name, model.AccountTypeClass, "Class"); err != nil {
			return err
		}
	}
	for name := range c.parser.Categories {
		if _, err := book.CreateAccount(name, model.AccountTypeCategory, "Category"); err != nil {
			return err
		}
	}
	return nil
}

// addSplit resolves a split target to an account and builds the split.
// Resolution order: bracketed account reference, plain account ID, category
// account, and finally the Dangling sink with a warning. Returns nil when no
// target was given at all.
func (c *QIFToLedger) addSplit(qt *qif.Transaction, book *model.Book, amount decimal.Decimal, target, memo string, negative bool) *model.Split {
	if target == "" {
		c.log.Warn("split", "empty split target for transaction at line %d", qt.StartLine)
		return nil
	}

	targetName := strings.Trim(target, "[]")
	account := book.LookupAccount(targetName)
	if account == nil && !strings.HasPrefix(target, "[") {
		account = book.LookupAccount("Category:" + targetName)
	}
	if account == nil {
		c.log.Warn("split", "invalid split target %q for transaction at line %d", target, qt.StartLine)
		account = book.LookupAccount("Dangling")
	}

	if negative {
		amount = amount.Neg()
	}
	return &model.Split{Amount: amount, AccountID: account.ID, Memo: memo}
}

// calcSplits derives the debit and credit splits of one QIF transaction.
func (c *QIFToLedger) calcSplits(qt *qif.Transaction, book *model.Book) []model.Split {
	if qt.Account == nil {
		c.log.Warn("account", "no account context for transaction at line %d", qt.StartLine)
		return nil
	}
	account := book.LookupAccount(qt.Account.ID)
	if account == nil {
		c.log.Warn("account", "unknown account %q for transaction at line %d", qt.Account.ID, qt.StartLine)
		return nil
	}

	var splits []model.Split
	if qt.HasSplits() {
		// debit against the transaction's own account, credits per target
		splits = append(splits, model.Split{
			Amount:    qt.TotalSplitAmount(),
			AccountID: account.ID,
			Memo:      qt.Memo,
		})
		for i, sc := range qt.SplitCategories {
			amount := decimal.Zero
			if i < len(qt.SplitAmountValues) {
				amount = qt.SplitAmountValues[i]
			}
			memo := ""
			if i < len(qt.SplitMemos) {
				memo = qt.SplitMemos[i]
			}
			if split := c.addSplit(qt, book, amount.Neg(), sc.Markup, memo, false); split != nil {
				splits = append(splits, *split)
			}
		}
		return splits
	}

	amount := decimal.Zero
	if qt.AmountValue != nil {
		amount = *qt.AmountValue
	} else {
		c.log.Warn("amount", "no amount for transaction at line %d", qt.StartLine)
	}
	splits = append(splits, model.Split{
		Amount:    amount,
		AccountID: account.ID,
		Memo:      qt.Memo,
	})
	if split := c.addSplit(qt, book, amount, qt.Category, qt.Memo, true); split != nil {
		splits = append(splits, *split)
	}
	return splits
}
