package convert

import (
	"sort"
	"strings"

	"github.com/nomina-dev/nomina/internal/dateutil"
	"github.com/nomina-dev/nomina/internal/gnucash"
	"github.com/nomina-dev/nomina/internal/id"
	"github.com/nomina-dev/nomina/internal/model"
)

// GnuCashToLedger converts a GnuCash XML document to a Book.
type GnuCashToLedger struct {
	base
	doc *gnucash.Document
}

// NewGnuCashToLedger creates the converter.
func NewGnuCashToLedger() *GnuCashToLedger {
	return &GnuCashToLedger{}
}

// Load parses the GnuCash XML file.
func (c *GnuCashToLedger) Load(path string) error {
	doc, err := gnucash.Load(path)
	if err != nil {
		return err
	}
	c.doc = doc
	return nil
}

// SetDocument injects an already parsed document, mainly for tests.
func (c *GnuCashToLedger) SetDocument(doc *gnucash.Document) {
	c.doc = doc
}

// ConvertToLedger maps accounts by GUID and scales the cents fractions back
// to decimal amounts.
func (c *GnuCashToLedger) ConvertToLedger() (*model.Book, error) {
	book := model.NewBook()

	for _, ga := range c.doc.Book.Accounts {
		account := &model.Account{
			ID:          ga.ID.Value,
			Name:        ga.Name,
			Type:        model.AccountType(ga.Type),
			Description: ga.Description,
			Currency:    model.DefaultCurrency,
		}
		if ga.Commodity != nil && ga.Commodity.ID != "" {
			account.Currency = ga.Commodity.ID
		}
		if ga.Parent != nil {
			account.ParentID = ga.Parent.Value
		}
		book.AddAccount(account)
	}

	for _, gt := range c.doc.Book.Transactions {
		isodate := gt.DatePosted.Date
		if iso, ok := dateutil.ParseDate(isodate); ok {
			isodate = iso
		}
		tx := &model.Transaction{
			ISODate:     isodate,
			Description: gt.Description,
			Memo:        gt.Description,
		}
		for _, gs := range gt.Splits {
			amount, err := gnucash.ParseValue(gs.Value)
			if err != nil {
				c.log.Warn("split", "unparseable split value %q in transaction %s", gs.Value, gt.ID.Value)
				continue
			}
			tx.Splits = append(tx.Splits, model.Split{
				Amount:     amount,
				AccountID:  gs.Account.Value,
				Memo:       gs.Memo,
				Reconciled: gs.ReconciledState == "y",
			})
		}
		book.Transactions[id.HashKey(isodate, gt.Description)] = tx
	}
	return book, nil
}

// LedgerToGnuCash converts a Book to a GnuCash XML document.
type LedgerToGnuCash struct {
	base
	book       *model.Book
	doc        *gnucash.Document
	accountMap map[string]string // ledger account ID -> GnuCash GUID
}

// NewLedgerToGnuCash creates the converter.
func NewLedgerToGnuCash() *LedgerToGnuCash {
	return &LedgerToGnuCash{}
}

// SetSource sets the Book to convert.
func (c *LedgerToGnuCash) SetSource(book *model.Book) {
	c.book = book
}

// Document returns the converted document.
func (c *LedgerToGnuCash) Document() *gnucash.Document {
	return c.doc
}

// ConvertFromLedger builds the GnuCash tree: fresh GUIDs per entity, parents
// converted before their children, amounts encoded as cents fractions.
func (c *LedgerToGnuCash) ConvertFromLedger() error {
	c.accountMap = make(map[string]string, len(c.book.Accounts))
	currency := gnucash.Commodity{Space: "CURRENCY", ID: c.book.Stats().MainCurrency()}

	doc := &gnucash.Document{
		CountData: gnucash.CountData{Type: "book", Value: "1"},
		Book: gnucash.Book{
			ID:          gnucash.GUID{Type: "guid", Value: id.NewGUID()},
			Commodities: []gnucash.Commodity{currency},
		},
	}

	for _, accountID := range c.orderedAccountIDs() {
		doc.Book.Accounts = append(doc.Book.Accounts, c.convertAccount(c.book.Accounts[accountID]))
	}

	txKeys := make([]string, 0, len(c.book.Transactions))
	for key := range c.book.Transactions {
		txKeys = append(txKeys, key)
	}
	sort.Strings(txKeys)
	for _, key := range txKeys {
		doc.Book.Transactions = append(doc.Book.Transactions, c.convertTransaction(c.book.Transactions[key], currency))
	}

	doc.Book.UpdateCountData()
	c.doc = doc
	return nil
}

// orderedAccountIDs returns the account IDs parents-first so parent GUIDs
// exist before children reference them.
func (c *LedgerToGnuCash) orderedAccountIDs() []string {
	ids := make([]string, 0, len(c.book.Accounts))
	for accountID := range c.book.Accounts {
		ids = append(ids, accountID)
	}
	depth := func(accountID string) int {
		d := 0
		seen := map[string]bool{accountID: true}
		for {
			account := c.book.Accounts[accountID]
			if account == nil || account.ParentID == "" || seen[account.ParentID] {
				return d
			}
			accountID = account.ParentID
			seen[accountID] = true
			d++
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := depth(ids[i]), depth(ids[j])
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (c *LedgerToGnuCash) convertAccount(la *model.Account) gnucash.Account {
	guid := id.NewGUID()
	c.accountMap[la.ID] = guid

	currency := la.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	account := gnucash.Account{
		Name:         la.Name,
		ID:           gnucash.GUID{Type: "guid", Value: guid},
		Type:         string(la.Type),
		Commodity:    &gnucash.Commodity{Space: "CURRENCY", ID: currency},
		CommodityScu: 100,
		Description:  la.Description,
	}
	if la.ParentID != "" {
		if parentGUID, ok := c.accountMap[la.ParentID]; ok {
			account.Parent = &gnucash.GUID{Type: "guid", Value: parentGUID}
		} else {
			c.log.Warn("account", "unknown parent account %q for %q", la.ParentID, la.ID)
		}
	}
	return account
}

func (c *LedgerToGnuCash) convertTransaction(lt *model.Transaction, currency gnucash.Commodity) gnucash.Transaction {
	tx := gnucash.Transaction{
		ID:          gnucash.GUID{Type: "guid", Value: id.NewGUID()},
		Currency:    currency,
		DatePosted:  gnucash.NewTsDate(lt.ISODate),
		DateEntered: gnucash.NewTsDate(lt.ISODate),
		Description: lt.Description,
	}
	for _, split := range lt.Splits {
		guid, ok := c.accountMap[split.AccountID]
		if !ok {
			c.log.Warn("split", "unknown split account %q", split.AccountID)
			continue
		}
		value := gnucash.FormatValue(split.Amount)
		reconciled := "n"
		if split.Reconciled {
			reconciled = "y"
		}
		tx.Splits = append(tx.Splits, gnucash.Split{
			ID:              gnucash.GUID{Type: "guid", Value: id.NewGUID()},
			Memo:            split.Memo,
			ReconciledState: reconciled,
			Value:           value,
			Quantity:        value,
			Account:         gnucash.GUID{Type: "guid", Value: guid},
		})
	}
	return tx
}

// ToText serializes the converted document to XML.
func (c *LedgerToGnuCash) ToText() (string, error) {
	var sb strings.Builder
	if err := gnucash.Write(&sb, c.doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}
