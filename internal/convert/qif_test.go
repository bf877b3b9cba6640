package convert

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina-dev/nomina/internal/model"
	"github.com/nomina-dev/nomina/internal/qif"
)

const qifFixture = `!Type:Cat
NGroceries
^
!Account
NChecking
TBank
^
!Type:Bank
D2024-01-15
T-42.50
MWeekly shop
LGroceries
^
D2024-01-16
T100.00
MTransfer in
L[Savings]
^
D2024-01-17
MSplit purchase
S[Checking]
EFirst part
$-10.00
SNowhere
ESecond part
$-5.00
^
!Account
NSavings
TBank
^
`

func convertQIF(t *testing.T, input string) (*model.Book, *QIFToLedger) {
	t.Helper()
	p := qif.NewParser()
	require.NoError(t, p.Parse(strings.NewReader(input)))

	c := NewQIFToLedger()
	c.SetParser(p)
	book, err := c.ConvertToLedger()
	require.NoError(t, err)
	return book, c
}

func findByMemo(t *testing.T, book *model.Book, memo string) *model.Transaction {
	t.Helper()
	for _, tx := range book.Transactions {
		if tx.Memo == memo {
			return tx
		}
	}
	t.Fatalf("no transaction with memo %q", memo)
	return nil
}

func TestQIFToLedger_Accounts(t *testing.T) {
	book, _ := convertQIF(t, qifFixture)

	for _, id := range []string{"Class", "Category", "Dangling", "Checking", "Savings", "Category:Groceries"} {
		assert.NotNil(t, book.LookupAccount(id), "account %s", id)
	}
	assert.Equal(t, model.AccountTypeError, book.LookupAccount("Dangling").Type)
	assert.Equal(t, model.AccountTypeCategory, book.LookupAccount("Category:Groceries").Type)
	assert.Equal(t, "Category", book.LookupAccount("Category:Groceries").ParentID)
}

func TestQIFToLedger_CategorySplit(t *testing.T) {
	book, _ := convertQIF(t, qifFixture)
	tx := findByMemo(t, book, "Weekly shop")

	require.Len(t, tx.Splits, 2)
	assert.Equal(t, "Checking", tx.Splits[0].AccountID)
	assert.True(t, tx.Splits[0].Amount.Equal(decimal.RequireFromString("-42.50")))
	assert.Equal(t, "Category:Groceries", tx.Splits[1].AccountID)
	assert.True(t, tx.Splits[1].Amount.Equal(decimal.RequireFromString("42.50")))
}

func TestQIFToLedger_AccountTransfer(t *testing.T) {
	book, _ := convertQIF(t, qifFixture)
	tx := findByMemo(t, book, "Transfer in")

	require.Len(t, tx.Splits, 2)
	assert.Equal(t, "Checking", tx.Splits[0].AccountID)
	assert.Equal(t, "Savings", tx.Splits[1].AccountID)
	assert.True(t, tx.Splits[1].Amount.Equal(decimal.RequireFromString("-100.00")))
}

func TestQIFToLedger_SplitTransaction(t *testing.T) {
	book, c := convertQIF(t, qifFixture)
	tx := findByMemo(t, book, "Split purchase")

	require.Len(t, tx.Splits, 3)
	assert.True(t, tx.Splits[0].Amount.Equal(decimal.RequireFromString("-15.00")))
	assert.Equal(t, "Checking", tx.Splits[0].AccountID)
	assert.Equal(t, "Dangling", tx.Splits[2].AccountID)
	assert.NotEmpty(t, c.Log().ByKind("split"))
}

func TestQIFToLedger_SplitsBalance(t *testing.T) {
	book, _ := convertQIF(t, qifFixture)

	require.Len(t, book.Transactions, 3)
	for key, tx := range book.Transactions {
		sum := decimal.Zero
		for _, split := range tx.Splits {
			sum = sum.Add(split.Amount)
		}
		assert.True(t, sum.IsZero(), "transaction %s does not balance: %s", key, sum)
	}
}
