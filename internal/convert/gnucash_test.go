package convert

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina-dev/nomina/internal/gnucash"
	"github.com/nomina-dev/nomina/internal/model"
)

func sampleLedgerBook() *model.Book {
	book := model.NewBook()
	book.Name = "Household"
	book.AddAccount(&model.Account{
		ID: "Checking", Name: "Checking", Type: model.AccountTypeBank, Currency: "EUR",
	})
	book.AddAccount(&model.Account{
		ID: "Expenses", Name: "Expenses", Type: model.AccountTypeExpense, Currency: "EUR",
	})
	book.AddAccount(&model.Account{
		ID: "Expenses:Food", Name: "Food", Type: model.AccountTypeExpense, Currency: "EUR",
		ParentID: "Expenses",
	})
	book.Transactions["2024-03-01:1"] = &model.Transaction{
		ISODate:     "2024-03-01",
		Description: "Weekly shop",
		Splits: []model.Split{
			{Amount: decimal.RequireFromString("-42.50"), AccountID: "Checking", Reconciled: true},
			{Amount: decimal.RequireFromString("42.50"), AccountID: "Expenses:Food"},
		},
	}
	return book
}

func TestLedgerToGnuCash_RoundTrip(t *testing.T) {
	from := NewLedgerToGnuCash()
	from.SetSource(sampleLedgerBook())
	require.NoError(t, from.ConvertFromLedger())
	text, err := from.ToText()
	require.NoError(t, err)
	assert.Empty(t, from.Log().Warnings())

	doc, err := gnucash.Parse(strings.NewReader(text))
	require.NoError(t, err)

	to := NewGnuCashToLedger()
	to.SetDocument(doc)
	book, err := to.ConvertToLedger()
	require.NoError(t, err)

	require.Len(t, book.Accounts, 3)
	require.Len(t, book.Transactions, 1)

	names := map[string]*model.Account{}
	for _, account := range book.Accounts {
		names[account.Name] = account
	}
	require.Contains(t, names, "Food")
	assert.Equal(t, names["Expenses"].ID, names["Food"].ParentID)
	assert.Equal(t, model.AccountType("BANK"), names["Checking"].Type)
	assert.Equal(t, "EUR", names["Checking"].Currency)

	for _, tx := range book.Transactions {
		assert.Equal(t, "2024-03-01", tx.ISODate)
		assert.Equal(t, "Weekly shop", tx.Description)
		require.Len(t, tx.Splits, 2)
		sum := decimal.Zero
		reconciled := 0
		for _, split := range tx.Splits {
			sum = sum.Add(split.Amount)
			if split.Reconciled {
				reconciled++
			}
			account := book.LookupAccount(split.AccountID)
			require.NotNil(t, account)
		}
		assert.True(t, sum.IsZero())
		assert.Equal(t, 1, reconciled)
	}
}

func TestLedgerToGnuCash_CountData(t *testing.T) {
	from := NewLedgerToGnuCash()
	from.SetSource(sampleLedgerBook())
	require.NoError(t, from.ConvertFromLedger())

	doc := from.Document()
	counts := map[string]string{}
	for _, cd := range doc.Book.CountData {
		counts[cd.Type] = cd.Value
	}
	assert.Equal(t, "3", counts["account"])
	assert.Equal(t, "1", counts["transaction"])
}

func TestLedgerToGnuCash_UnknownSplitAccount(t *testing.T) {
	book := sampleLedgerBook()
	book.Transactions["2024-03-02:1"] = &model.Transaction{
		ISODate:     "2024-03-02",
		Description: "Dangling reference",
		Splits: []model.Split{
			{Amount: decimal.RequireFromString("5.00"), AccountID: "NoSuchAccount"},
		},
	}

	from := NewLedgerToGnuCash()
	from.SetSource(book)
	require.NoError(t, from.ConvertFromLedger())
	assert.NotEmpty(t, from.Log().ByKind("split"))
}
