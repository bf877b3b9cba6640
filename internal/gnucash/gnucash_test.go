package gnucash

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	eur := Commodity{Space: "ISO4217", ID: "EUR"}
	doc := &Document{
		CountData: CountData{Type: "book", Value: "1"},
		Book: Book{
			ID:          GUID{Type: "guid", Value: "b0000000000000000000000000000001"},
			Commodities: []Commodity{eur},
			Accounts: []Account{
				{
					Name:         "Root Account",
					ID:           GUID{Type: "guid", Value: "a0000000000000000000000000000001"},
					Type:         "ROOT",
					Commodity:    &eur,
					CommodityScu: 100,
				},
				{
					Name:         "Checking",
					ID:           GUID{Type: "guid", Value: "a0000000000000000000000000000002"},
					Type:         "BANK",
					Commodity:    &eur,
					CommodityScu: 100,
					Description:  "Girokonto",
					Parent:       &GUID{Type: "guid", Value: "a0000000000000000000000000000001"},
				},
				{
					Name:         "Groceries",
					ID:           GUID{Type: "guid", Value: "a0000000000000000000000000000003"},
					Type:         "EXPENSE",
					Commodity:    &eur,
					CommodityScu: 100,
					Parent:       &GUID{Type: "guid", Value: "a0000000000000000000000000000001"},
				},
			},
			Transactions: []Transaction{
				{
					ID:          GUID{Type: "guid", Value: "t0000000000000000000000000000001"},
					Currency:    eur,
					DatePosted:  NewTsDate("2024-01-15"),
					DateEntered: NewTsDate("2024-01-15"),
					Description: "Weekly shop <groceries & more>",
					Splits: []Split{
						{
							ID:              GUID{Type: "guid", Value: "s0000000000000000000000000000001"},
							ReconciledState: "n",
							Value:           "-4250/100",
							Quantity:        "-4250/100",
							Account:         GUID{Type: "guid", Value: "a0000000000000000000000000000002"},
						},
						{
							ID:              GUID{Type: "guid", Value: "s0000000000000000000000000000002"},
							ReconciledState: "n",
							Value:           "4250/100",
							Quantity:        "4250/100",
							Account:         GUID{Type: "guid", Value: "a0000000000000000000000000000003"},
						},
					},
				},
			},
		},
	}
	doc.Book.UpdateCountData()
	return doc
}

func TestWriteParseRoundTrip(t *testing.T) {
	doc := sampleDocument()

	var sb strings.Builder
	require.NoError(t, Write(&sb, doc))
	output := sb.String()

	assert.Contains(t, output, `xmlns:gnc="http://www.gnucash.org/XML/gnc"`)
	assert.Contains(t, output, "<act:name>Checking</act:name>")
	assert.Contains(t, output, "<split:value>-4250/100</split:value>")
	assert.Contains(t, output, "Weekly shop &lt;groceries &amp; more&gt;")

	parsed, err := Parse(strings.NewReader(output))
	require.NoError(t, err)

	require.Len(t, parsed.Book.Accounts, 3)
	require.Len(t, parsed.Book.Transactions, 1)

	checking := parsed.Book.Accounts[1]
	assert.Equal(t, "Checking", checking.Name)
	assert.Equal(t, "BANK", checking.Type)
	assert.Equal(t, "Girokonto", checking.Description)
	require.NotNil(t, checking.Parent)
	assert.Equal(t, "a0000000000000000000000000000001", checking.Parent.Value)
	require.NotNil(t, checking.Commodity)
	assert.Equal(t, "EUR", checking.Commodity.ID)

	tx := parsed.Book.Transactions[0]
	assert.Equal(t, "2024-01-15 00:00:00 +0000", tx.DatePosted.Date)
	assert.Equal(t, "Weekly shop <groceries & more>", tx.Description)
	require.Len(t, tx.Splits, 2)
	assert.Equal(t, "-4250/100", tx.Splits[0].Value)
	assert.Equal(t, "a0000000000000000000000000000003", tx.Splits[1].Account.Value)
}

func TestStats(t *testing.T) {
	doc := sampleDocument()
	stats := doc.Stats()

	assert.Equal(t, 3, stats.Accounts)
	assert.Equal(t, 1, stats.Transactions)
	assert.Equal(t, "2024-01-15", stats.StartDate)
	assert.Equal(t, "2024-01-15", stats.EndDate)
	assert.Equal(t, 1, stats.Currencies["EUR"])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-1050/100", FormatValue(decimal.RequireFromString("-10.50")))
	assert.Equal(t, "0/100", FormatValue(decimal.Zero))
	assert.Equal(t, "100/100", FormatValue(decimal.NewFromInt(1)))
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("-1050/100")
	require.NoError(t, err)
	assert.Equal(t, "-10.5", v.String())

	v, err = ParseValue("42")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	_, err = ParseValue("10/0")
	assert.Error(t, err)

	_, err = ParseValue("abc/100")
	assert.Error(t, err)
}

func TestNewTsDate(t *testing.T) {
	assert.Equal(t, "2024-01-15 00:00:00 +0000", NewTsDate("2024-01-15").Date)
	assert.Equal(t, "2024-01-15 12:30:00 +0100", NewTsDate("2024-01-15 12:30:00 +0100").Date)
}

func TestUpdateCountData(t *testing.T) {
	doc := sampleDocument()
	counts := map[string]string{}
	for _, cd := range doc.Book.CountData {
		counts[cd.Type] = cd.Value
	}
	assert.Equal(t, "3", counts["account"])
	assert.Equal(t, "1", counts["transaction"])
}
