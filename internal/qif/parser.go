// Package qif parses Quicken Interchange Format files.
// See https://en.wikipedia.org/wiki/Quicken_Interchange_Format
package qif

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/nomina-dev/nomina/internal/id"
	"github.com/nomina-dev/nomina/internal/model"
)

// recordBuilder accumulates the fields of one record between a header or ^
// terminator and the next. Which fields are meaningful depends on the record
// type declared by the last !Type:/!Account header; the builder itself holds
// every possible field explicitly.
type recordBuilder struct {
	startLine int
	endLine   int
	seen      bool

	name string

	date     string
	amount   string
	payee    string
	memo     string
	category string
	cleared  string
	address  string

	splitCategories []SplitCategory
	splitMemos      []string
	splitAmounts    []string
}

// set assigns a field value by its one-letter code. Split codes append;
// everything else overwrites. Returns false for codes the parser does not
// understand at all.
func (b *recordBuilder) set(code byte, value string) bool {
	switch code {
	case 'D':
		b.date = value
	case 'T':
		b.amount = value
	case 'U':
		// amount duplicate used by some dialects; T wins when both appear
		if b.amount == "" {
			b.amount = value
		}
	case 'M':
		b.memo = value
	case 'P':
		b.payee = value
	case 'L':
		b.category = value
	case 'N':
		b.name = value
	case 'A':
		b.address = value
	case 'C':
		b.cleared = value
	case 'S':
		b.splitCategories = append(b.splitCategories, ParseSplitCategory(value))
	case 'E':
		b.splitMemos = append(b.splitMemos, value)
	case '$':
		b.splitAmounts = append(b.splitAmounts, value)
	case '~', '&', '%', '@', 'B', 'F', 'G', 'I', 'K', 'O', 'Q', 'R', 'V', 'Y':
		// recognized by the FinanzmanagerDeluxe and Quicken dialects but not
		// carried into the model
	default:
		return false
	}
	b.seen = true
	return true
}

// Parser is a resilient line-oriented QIF parser. Each instance is
// independent; construct one per file.
type Parser struct {
	Name               string
	Currency           string
	DefaultAccountType model.AccountType

	Options      map[string]bool
	Classes      map[string]*Class
	Categories   map[string]*Category
	Accounts     map[string]*Account
	Transactions map[string]*Transaction
	Errors       []ErrorRecord

	// declaration order of map keys, for deterministic conversion output
	AccountOrder     []string
	TransactionOrder []string

	currentAccount *Account
}

// NewParser creates a Parser with EUR as the assumed currency and EXPENSE as
// the default type for synthesized accounts.
func NewParser() *Parser {
	return &Parser{
		Currency:           model.DefaultCurrency,
		DefaultAccountType: model.AccountTypeExpense,
		Options:            make(map[string]bool),
		Classes:            make(map[string]*Class),
		Categories:         make(map[string]*Category),
		Accounts:           make(map[string]*Account),
		Transactions:       make(map[string]*Transaction),
	}
}

// ParseFile parses a QIF file, decoding it as ISO-8859-1, the encoding the
// observed Quicken and FinanzmanagerDeluxe exports use.
func (p *Parser) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening qif file: %w", err)
	}
	defer f.Close()

	if p.Name == "" {
		p.Name = filepath.Base(path)
	}
	return p.Parse(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
}

// Parse runs the state machine over the input lines. Lines it cannot
// interpret become ErrorRecords; parsing never aborts on malformed input.
func (p *Parser) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	builder := &recordBuilder{startLine: 1}
	recordType := ""
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// currency sniffing: a leading currency symbol reveals the dialect
		if strings.HasPrefix(line, "$") {
			p.Currency = "USD"
		} else if strings.HasPrefix(line, "€") {
			p.Currency = "EUR"
		}

		switch {
		case strings.HasPrefix(line, "!Option:"):
			p.Options[strings.TrimPrefix(line, "!Option:")] = true
		case strings.HasPrefix(line, "!Clear:"):
			p.Options[strings.TrimPrefix(line, "!Clear:")] = false
		case strings.HasPrefix(line, "!Type:") || strings.HasPrefix(line, "!Account"):
			if builder.seen {
				builder.endLine = lineNum - 1
				p.finalize(recordType, builder)
			}
			if strings.HasPrefix(line, "!Account") {
				recordType = "Account"
			} else {
				recordType = strings.TrimPrefix(line, "!Type:")
			}
			builder = &recordBuilder{startLine: lineNum + 1}
		case line == "^":
			if builder.seen {
				builder.endLine = lineNum
				p.finalize(recordType, builder)
			}
			builder = &recordBuilder{startLine: lineNum + 1}
		default:
			code := line[0]
			value := strings.TrimSpace(line[1:])
			if !builder.set(code, value) {
				p.Errors = append(p.Errors, ErrorRecord{
					ParseRecord: newParseRecord(builder.startLine, lineNum),
					Line:        line,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading qif input: %w", err)
	}

	if builder.seen {
		builder.endLine = lineNum
		p.finalize(recordType, builder)
	}
	return nil
}

// finalize turns an accumulated record into a typed instance of the current
// record type and registers it.
func (p *Parser) finalize(recordType string, b *recordBuilder) {
	switch recordType {
	case "Account":
		// inside an !Account block T carries the type and D the description
		accountType := b.amount
		if accountType == "" {
			accountType = string(p.DefaultAccountType)
		}
		p.currentAccount = p.addAccount(b.name, accountType, b.date, b.startLine, b.endLine)
	case "Class":
		class := &Class{
			ParseRecord: newParseRecord(b.startLine, b.endLine),
			Name:        b.name,
			Description: b.date,
		}
		p.Classes[class.Name] = class
	case "Cat":
		category := &Category{
			ParseRecord: newParseRecord(b.startLine, b.endLine),
			Name:        b.name,
			Description: b.date,
		}
		p.Categories[category.Name] = category
	default:
		p.addTransaction(b)
	}
}

// addAccount registers an account under its full colon path, synthesizing any
// missing ancestors so every parent chain resolves before transactions
// reference it. Re-declaring a path never creates duplicates.
func (p *Parser) addAccount(name, accountType, description string, startLine, endLine int) *Account {
	if name == "" {
		return nil
	}
	segments := strings.Split(name, ":")
	currentID := ""
	parentID := ""
	var account *Account
	for i, segment := range segments {
		if currentID == "" {
			currentID = segment
		} else {
			parentID = currentID
			currentID = currentID + ":" + segment
		}
		account = p.Accounts[currentID]
		if account == nil {
			account = &Account{
				ParseRecord: newParseRecord(startLine, endLine),
				ID:          currentID,
				Name:        segment,
				Type:        accountType,
				Currency:    p.Currency,
				ParentID:    parentID,
			}
			p.Accounts[currentID] = account
			p.AccountOrder = append(p.AccountOrder, currentID)
		}
		if i == len(segments)-1 && account.Description == "" {
			account.Description = description
		}
	}
	return account
}

// addTransaction normalizes the accumulated record, attaches the current
// account context and keys it so same-day same-account records stay distinct.
func (p *Parser) addTransaction(b *recordBuilder) {
	tx := &Transaction{
		ParseRecord:     newParseRecord(b.startLine, b.endLine),
		ISODate:         b.date,
		Amount:          b.amount,
		Name:            b.name,
		Payee:           b.payee,
		Memo:            b.memo,
		Cleared:         b.cleared,
		Address:         b.address,
		Category:        b.category,
		SplitCategories: b.splitCategories,
		SplitMemos:      b.splitMemos,
		SplitAmounts:    b.splitAmounts,
	}
	tx.normalize()
	tx.Account = p.currentAccount

	accountID := ""
	if p.currentAccount != nil {
		accountID = p.currentAccount.ID
	}
	key := id.TxKey(accountID, tx.ISODate, tx.StartLine)
	p.Transactions[key] = tx
	p.TransactionOrder = append(p.TransactionOrder, key)
}

// Stats summarizes the parsed content, including field and error histograms
// in Other for dialect investigation.
func (p *Parser) Stats() model.Stats {
	stats := model.Stats{
		Accounts:     len(p.Accounts),
		Transactions: len(p.Transactions),
		Classes:      len(p.Classes),
		Categories:   len(p.Categories),
		Errors:       len(p.Errors),
		Currencies:   map[string]int{},
	}

	for _, a := range p.Accounts {
		stats.Currencies[a.Currency]++
	}

	for _, tx := range p.Transactions {
		if _, hasDateError := tx.Errors["date"]; hasDateError || tx.ISODate == "" {
			continue
		}
		if stats.StartDate == "" || tx.ISODate < stats.StartDate {
			stats.StartDate = tx.ISODate
		}
		if stats.EndDate == "" || tx.ISODate > stats.EndDate {
			stats.EndDate = tx.ISODate
		}
	}

	stats.Other = map[string]any{
		"options":         p.Options,
		"field_histogram": p.fieldHistogram(),
		"error_histogram": p.errorHistogram(),
	}
	return stats
}

func (p *Parser) fieldHistogram() map[string]int {
	histogram := make(map[string]int)
	count := func(field, value string) {
		if value != "" {
			histogram[field]++
		}
	}
	for _, tx := range p.Transactions {
		count("date", tx.ISODate)
		count("amount", tx.Amount)
		count("payee", tx.Payee)
		count("memo", tx.Memo)
		count("category", tx.Category)
		count("cleared", tx.Cleared)
		count("address", tx.Address)
		if len(tx.SplitCategories) > 0 {
			histogram["split_category"]++
		}
		if len(tx.SplitMemos) > 0 {
			histogram["split_memo"]++
		}
		if len(tx.SplitAmounts) > 0 {
			histogram["split_amount"]++
		}
	}
	return histogram
}

func (p *Parser) errorHistogram() map[string]int {
	histogram := make(map[string]int)
	for _, tx := range p.Transactions {
		for field := range tx.Errors {
			histogram[field]++
		}
	}
	return histogram
}
