// Package gnucash reads and writes the GnuCash V2 uncompressed XML format.
package gnucash

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nomina-dev/nomina/internal/dateutil"
	"github.com/nomina-dev/nomina/internal/model"
)

// namespaces declared on the gnc-v2 root element, in emission order.
var namespaces = [][2]string{
	{"gnc", "http://www.gnucash.org/XML/gnc"},
	{"act", "http://www.gnucash.org/XML/act"},
	{"book", "http://www.gnucash.org/XML/book"},
	{"cd", "http://www.gnucash.org/XML/cd"},
	{"cmdty", "http://www.gnucash.org/XML/cmdty"},
	{"slot", "http://www.gnucash.org/XML/slot"},
	{"split", "http://www.gnucash.org/XML/split"},
	{"trn", "http://www.gnucash.org/XML/trn"},
	{"ts", "http://www.gnucash.org/XML/ts"},
}

// GUID is a typed identifier element such as <act:id type="guid">.
type GUID struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// CountData is a <gnc:count-data> element. Value stays a string because the
// stdlib decoder only accepts character data into string fields.
type CountData struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Commodity identifies a currency by ISO space and code.
type Commodity struct {
	Space string `xml:"space"`
	ID    string `xml:"id"`
}

// TsDate is a timestamp element; dates without a time-of-day get midnight UTC
// appended so GnuCash accepts them.
type TsDate struct {
	Date string `xml:"date"`
}

// NewTsDate builds a TsDate from an ISO date.
func NewTsDate(isoDate string) TsDate {
	if len(isoDate) == 10 {
		isoDate += " 00:00:00 +0000"
	}
	return TsDate{Date: isoDate}
}

// Split is one leg of a transaction. Value and Quantity hold fractions such
// as "-1050/100".
type Split struct {
	ID              GUID   `xml:"id"`
	Memo            string `xml:"memo"`
	ReconciledState string `xml:"reconciled-state"`
	Value           string `xml:"value"`
	Quantity        string `xml:"quantity"`
	Account         GUID   `xml:"account"`
}

// Transaction is a <gnc:transaction> element.
type Transaction struct {
	ID          GUID      `xml:"id"`
	Currency    Commodity `xml:"currency"`
	DatePosted  TsDate    `xml:"date-posted"`
	DateEntered TsDate    `xml:"date-entered"`
	Description string    `xml:"description"`
	Splits      []Split   `xml:"splits>split"`
}

// Account is a <gnc:account> element.
type Account struct {
	Name         string     `xml:"name"`
	ID           GUID       `xml:"id"`
	Type         string     `xml:"type"`
	Commodity    *Commodity `xml:"commodity"`
	CommodityScu int        `xml:"commodity-scu"`
	Description  string     `xml:"description"`
	Parent       *GUID      `xml:"parent"`
}

// Book is a <gnc:book> element.
type Book struct {
	ID           GUID          `xml:"id"`
	CountData    []CountData   `xml:"count-data"`
	Commodities  []Commodity   `xml:"commodity"`
	Accounts     []Account     `xml:"account"`
	Transactions []Transaction `xml:"transaction"`
}

// UpdateCountData refreshes the per-type element counts from the content.
func (b *Book) UpdateCountData() {
	b.CountData = []CountData{
		{Type: "account", Value: strconv.Itoa(len(b.Accounts))},
		{Type: "transaction", Value: strconv.Itoa(len(b.Transactions))},
		{Type: "commodity", Value: "1"},
	}
}

// Document is the gnc-v2 root.
type Document struct {
	XMLName   xml.Name  `xml:"gnc-v2"`
	CountData CountData `xml:"count-data"`
	Book      Book      `xml:"book"`
}

// Parse reads a GnuCash XML document. Element names are matched by local
// name, so the namespace prefixes GnuCash emits are accepted without a
// schema binding.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing gnucash xml: %w", err)
	}
	return &doc, nil
}

// Load parses a GnuCash XML file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gnucash file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Stats summarizes the document content.
func (d *Document) Stats() model.Stats {
	stats := model.Stats{
		Accounts:     len(d.Book.Accounts),
		Transactions: len(d.Book.Transactions),
		Currencies:   map[string]int{},
	}
	for _, tx := range d.Book.Transactions {
		if tx.Currency.ID != "" {
			stats.Currencies[tx.Currency.ID]++
		}
		if iso, ok := dateutil.ParseDate(tx.DatePosted.Date); ok {
			if stats.StartDate == "" || iso < stats.StartDate {
				stats.StartDate = iso
			}
			if stats.EndDate == "" || iso > stats.EndDate {
				stats.EndDate = iso
			}
		}
	}
	return stats
}

// FormatValue renders an amount as the cents fraction GnuCash stores,
// e.g. -10.50 becomes "-1050/100".
func FormatValue(amount decimal.Decimal) string {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0)
	return cents.String() + "/100"
}

// ParseValue parses a fraction such as "-1050/100" back into a decimal.
func ParseValue(value string) (decimal.Decimal, error) {
	numerator, denominator, found := strings.Cut(value, "/")
	if !found {
		return decimal.NewFromString(value)
	}
	n, err := decimal.NewFromString(numerator)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value fraction %q", value)
	}
	d, err := decimal.NewFromString(denominator)
	if err != nil || d.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid value fraction %q", value)
	}
	return n.Div(d), nil
}

// WriteFile serializes the document to an XML file.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating gnucash file: %w", err)
	}
	defer f.Close()
	return Write(f, doc)
}

// Write serializes the document with the namespace prefixes GnuCash itself
// emits. The stdlib encoder rewrites prefixes, so the element tree is
// rendered by hand.
func Write(w io.Writer, doc *Document) error {
	x := &xmlWriter{w: w}
	x.line(`<?xml version="1.0" encoding="utf-8" ?>`)
	x.raw("<gnc-v2")
	for _, ns := range namespaces {
		x.raw("\n     xmlns:" + ns[0] + `="` + ns[1] + `"`)
	}
	x.line(">")

	x.line(fmt.Sprintf(`<gnc:count-data cd:type=%q>%s</gnc:count-data>`,
		doc.CountData.Type, doc.CountData.Value))
	x.line(`<gnc:book version="2.0.0">`)
	x.element("book:id", doc.Book.ID.Value, "type", doc.Book.ID.Type)
	for _, cd := range doc.Book.CountData {
		x.line(fmt.Sprintf(`<gnc:count-data cd:type=%q>%s</gnc:count-data>`, cd.Type, cd.Value))
	}
	for _, c := range doc.Book.Commodities {
		x.line(`<gnc:commodity version="2.0.0">`)
		x.element("cmdty:space", c.Space)
		x.element("cmdty:id", c.ID)
		x.line(`</gnc:commodity>`)
	}
	for i := range doc.Book.Accounts {
		x.writeAccount(&doc.Book.Accounts[i])
	}
	for i := range doc.Book.Transactions {
		x.writeTransaction(&doc.Book.Transactions[i])
	}
	x.line(`</gnc:book>`)
	x.line(`</gnc-v2>`)
	return x.err
}

type xmlWriter struct {
	w   io.Writer
	err error
}

func (x *xmlWriter) raw(s string) {
	if x.err != nil {
		return
	}
	_, x.err = io.WriteString(x.w, s)
}

func (x *xmlWriter) line(s string) {
	x.raw(s)
	x.raw("\n")
}

func escape(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}

// element writes a single-line element with optional attribute pairs.
func (x *xmlWriter) element(name, text string, attrs ...string) {
	x.raw("<" + name)
	for i := 0; i+1 < len(attrs); i += 2 {
		x.raw(" " + attrs[i] + `="` + escape(attrs[i+1]) + `"`)
	}
	x.line(">" + escape(text) + "</" + name + ">")
}

func (x *xmlWriter) writeAccount(a *Account) {
	x.line(`<gnc:account version="2.0.0">`)
	x.element("act:name", a.Name)
	x.element("act:id", a.ID.Value, "type", a.ID.Type)
	x.element("act:type", a.Type)
	if a.Commodity != nil {
		x.line("<act:commodity>")
		x.element("cmdty:space", a.Commodity.Space)
		x.element("cmdty:id", a.Commodity.ID)
		x.line("</act:commodity>")
		x.element("act:commodity-scu", strconv.Itoa(a.CommodityScu))
	}
	if a.Description != "" {
		x.element("act:description", a.Description)
	}
	if a.Parent != nil {
		x.element("act:parent", a.Parent.Value, "type", a.Parent.Type)
	}
	x.line(`</gnc:account>`)
}

func (x *xmlWriter) writeTransaction(t *Transaction) {
	x.line(`<gnc:transaction version="2.0.0">`)
	x.element("trn:id", t.ID.Value, "type", t.ID.Type)
	x.line("<trn:currency>")
	x.element("cmdty:space", t.Currency.Space)
	x.element("cmdty:id", t.Currency.ID)
	x.line("</trn:currency>")
	x.line("<trn:date-posted>")
	x.element("ts:date", t.DatePosted.Date)
	x.line("</trn:date-posted>")
	x.line("<trn:date-entered>")
	x.element("ts:date", t.DateEntered.Date)
	x.line("</trn:date-entered>")
	x.element("trn:description", t.Description)
	x.line("<trn:splits>")
	for _, s := range t.Splits {
		x.line("<trn:split>")
		x.element("split:id", s.ID.Value, "type", s.ID.Type)
		if s.Memo != "" {
			x.element("split:memo", s.Memo)
		}
		x.element("split:reconciled-state", s.ReconciledState)
		x.element("split:value", s.Value)
		x.element("split:quantity", s.Quantity)
		x.element("split:account", s.Account.Value, "type", s.Account.Type)
		x.line("</trn:split>")
	}
	x.line("</trn:splits>")
	x.line(`</gnc:transaction>`)
}
