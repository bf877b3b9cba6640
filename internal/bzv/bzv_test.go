package bzv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `[
  {
    "Id": "TX-1",
    "AcctId": "DE89370400440532013000",
    "OwnrAcctCcy": "EUR",
    "OwnrAcctNo": "532013000",
    "OwnrAcctBankCode": "37040044",
    "BookgDt": "2024-01-15",
    "Amt": "42.50",
    "AmtCcy": "EUR",
    "CdtDbtInd": "DBIT",
    "RmtInf": "SUPERMARKT SAGT DANKE",
    "BookgTxt": "Lastschrift",
    "BookgSts": "BOOK",
    "Category": "Expenses:Food:Groceries",
    "ReadStatus": true,
    "Flag": "None"
  },
  {
    "Id": "TX-2",
    "AcctId": "DE89370400440532013000",
    "OwnrAcctCcy": "EUR",
    "OwnrAcctNo": "532013000",
    "OwnrAcctBankCode": "37040044",
    "BookgDt": "2024-02-01",
    "Amt": "1200.00",
    "AmtCcy": "EUR",
    "CdtDbtInd": "CRDT",
    "BookgTxt": "Gehalt",
    "BookgSts": "BOOK",
    "ReadStatus": false,
    "Flag": "None"
  }
]`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))
	return path
}

func TestReadTransactions(t *testing.T) {
	txs, err := ReadTransactions(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "TX-1", txs[0].Id)
	assert.Equal(t, "DE89370400440532013000", txs[0].AcctId)
	assert.Equal(t, "Expenses:Food:Groceries", txs[0].Category)
	assert.True(t, txs[0].ReadStatus)
}

func TestReadTransactions_BadJSON(t *testing.T) {
	_, err := ReadTransactions(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestSignedAmount(t *testing.T) {
	txs, err := ReadTransactions(strings.NewReader(sampleExport))
	require.NoError(t, err)

	debit, err := txs[0].SignedAmount()
	require.NoError(t, err)
	assert.Equal(t, "-42.5", debit.String())

	credit, err := txs[1].SignedAmount()
	require.NoError(t, err)
	assert.Equal(t, "1200", credit.String())

	bad := &Transaction{Amt: "oops"}
	_, err = bad.SignedAmount()
	assert.Error(t, err)
}

func TestLoadFile_AccountsAndCategories(t *testing.T) {
	book := NewBook("test")
	require.NoError(t, book.LoadFile(writeSample(t), "Girokonto"))

	require.Len(t, book.Transactions, 2)

	// the bank account plus the three-level category chain
	assert.Equal(t, []string{
		"DE89370400440532013000",
		"Expenses",
		"Expenses:Food",
		"Expenses:Food:Groceries",
	}, book.AccountOrder)

	bank := book.Accounts["DE89370400440532013000"]
	require.NotNil(t, bank)
	assert.Equal(t, "Girokonto", bank.Name)
	assert.Empty(t, bank.ParentID)

	leaf := book.Accounts["Expenses:Food:Groceries"]
	require.NotNil(t, leaf)
	assert.Equal(t, "Groceries", leaf.Name)
	assert.Equal(t, "Expenses:Food", leaf.ParentID)
}

func TestLoadFile_Missing(t *testing.T) {
	book := NewBook("test")
	assert.Error(t, book.LoadFile("/does/not/exist.json", "x"))
}

func TestAddCategoryAccount_NoDuplicates(t *testing.T) {
	book := NewBook("test")
	book.AddCategoryAccount("A:B")
	book.AddCategoryAccount("A:B")
	book.AddCategoryAccount("A:C")
	assert.Equal(t, []string{"A", "A:B", "A:C"}, book.AccountOrder)
}

func TestStats(t *testing.T) {
	book := NewBook("test")
	book.Owner = "wf"
	require.NoError(t, book.LoadFile(writeSample(t), "Girokonto"))

	stats := book.Stats()
	assert.Equal(t, 4, stats.Accounts)
	assert.Equal(t, 2, stats.Transactions)
	assert.Equal(t, "2024-01-15", stats.StartDate)
	assert.Equal(t, "2024-02-01", stats.EndDate)
	assert.Equal(t, 1, stats.Categories)
	assert.Equal(t, 2, stats.Currencies["EUR"])
	assert.Equal(t, "test", stats.Other["name"])
}
