package qif

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) *Parser {
	t.Helper()
	p := NewParser()
	require.NoError(t, p.Parse(strings.NewReader(input)))
	return p
}

func TestParse_AccountHierarchySynthesis(t *testing.T) {
	input := `!Account
NExpenses:Food:Groceries
TBank
^
`
	p := parse(t, input)

	require.Len(t, p.Accounts, 3)
	assert.Equal(t, []string{"Expenses", "Expenses:Food", "Expenses:Food:Groceries"}, p.AccountOrder)

	leaf := p.Accounts["Expenses:Food:Groceries"]
	require.NotNil(t, leaf)
	assert.Equal(t, "Groceries", leaf.Name)
	assert.Equal(t, "Expenses:Food", leaf.ParentID)
	assert.Equal(t, "Bank", leaf.Type)

	mid := p.Accounts["Expenses:Food"]
	require.NotNil(t, mid)
	assert.Equal(t, "Expenses", mid.ParentID)

	root := p.Accounts["Expenses"]
	require.NotNil(t, root)
	assert.Empty(t, root.ParentID)
}

func TestParse_AccountRedeclarationNoDuplicates(t *testing.T) {
	input := `!Account
NExpenses:Food:Groceries
^
!Account
NExpenses:Food:Groceries
^
`
	p := parse(t, input)
	assert.Len(t, p.Accounts, 3)
	assert.Len(t, p.AccountOrder, 3)
}

func TestParse_SimpleTransaction(t *testing.T) {
	input := `!Account
NChecking
TBank
^
!Type:Bank
D01/15/24
T-42.50
PSuperMart
MWeekly shop
LGroceries
^
`
	p := parse(t, input)

	require.Len(t, p.Transactions, 1)
	id := p.TransactionOrder[0]
	assert.Equal(t, "Checking:2024-01-15:6", id)

	tx := p.Transactions[id]
	assert.Equal(t, "2024-01-15", tx.ISODate)
	require.NotNil(t, tx.AmountValue)
	assert.Equal(t, "-42.5", tx.AmountValue.String())
	assert.Equal(t, "SuperMart", tx.Payee)
	assert.Equal(t, "Weekly shop", tx.Memo)
	assert.Equal(t, "Groceries", tx.Category)
	require.NotNil(t, tx.Account)
	assert.Equal(t, "Checking", tx.Account.ID)
	assert.Empty(t, tx.Errors)
}

func TestParse_SplitTransaction(t *testing.T) {
	input := `!Type:Bank
D02/01/24
T-100.00
PHardware store
SRepairs
EPaint
$-60.00
S[Savings]
ETransfer
$-40.00
^
`
	p := parse(t, input)

	require.Len(t, p.Transactions, 1)
	tx := p.Transactions[p.TransactionOrder[0]]
	require.Len(t, tx.SplitCategories, 2)
	require.Len(t, tx.SplitAmountValues, 2)

	assert.Equal(t, "Repairs", tx.SplitCategories[0].Category)
	assert.Equal(t, "Savings", tx.SplitCategories[1].Account)
	assert.Equal(t, []string{"Paint", "Transfer"}, tx.SplitMemos)
	assert.Equal(t, "-100", tx.TotalSplitAmount().String())
	assert.True(t, tx.HasSplits())
}

func TestParse_VorgangNamePrependedToMemo(t *testing.T) {
	input := `!Type:Bank
D03/01/24
T-5.00
NLastschrift
MMonatsbeitrag
^
`
	p := parse(t, input)
	tx := p.Transactions[p.TransactionOrder[0]]
	assert.Equal(t, "Lastschrift:Monatsbeitrag", tx.Memo)
}

func TestParse_ClassesAndCategories(t *testing.T) {
	input := `!Type:Class
NPrivat
DPrivate Ausgaben
^
!Type:Cat
NLebensmittel
DEssen und Trinken
^
`
	p := parse(t, input)

	require.Len(t, p.Classes, 1)
	assert.Equal(t, "Private Ausgaben", p.Classes["Privat"].Description)

	require.Len(t, p.Categories, 1)
	assert.Equal(t, "Essen und Trinken", p.Categories["Lebensmittel"].Description)
}

func TestParse_DateErrorRetainsRawValue(t *testing.T) {
	input := `!Type:Bank
Dgarbage
T1.00
^
`
	p := parse(t, input)
	tx := p.Transactions[p.TransactionOrder[0]]
	assert.Equal(t, "garbage", tx.ISODate)
	assert.Contains(t, tx.Errors, "date")
}

func TestParse_SplitAmountErrorRecordedPerSplit(t *testing.T) {
	input := `!Type:Bank
D04/01/24
SFood
$nonsense
SDrinks
$-2.00
^
`
	p := parse(t, input)
	tx := p.Transactions[p.TransactionOrder[0]]
	assert.Contains(t, tx.Errors, "split0")
	assert.NotContains(t, tx.Errors, "split1")
	require.Len(t, tx.SplitAmountValues, 2)
	assert.True(t, tx.SplitAmountValues[0].IsZero())
}

func TestParse_UnknownLinesBecomeErrorRecords(t *testing.T) {
	input := `!Type:Bank
D05/01/24
?what is this
T1.00
^
`
	p := parse(t, input)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "?what is this", p.Errors[0].Line)
	// the surrounding transaction still parses
	assert.Len(t, p.Transactions, 1)
}

func TestParse_OptionsAndClear(t *testing.T) {
	input := `!Option:AutoSwitch
!Clear:AutoSwitch
`
	p := parse(t, input)
	value, ok := p.Options["AutoSwitch"]
	require.True(t, ok)
	assert.False(t, value)
}

func TestParse_CurrencySniffing(t *testing.T) {
	input := `!Type:Bank
D06/01/24
T-10.00
SFood
$-10.00
^
`
	p := parse(t, input)
	// a leading $ on the split amount line marks a dollar dialect
	assert.Equal(t, "USD", p.Currency)
}

func TestParse_FlushWithoutTerminator(t *testing.T) {
	input := `!Type:Bank
D07/01/24
T-1.00`
	p := parse(t, input)
	assert.Len(t, p.Transactions, 1)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"-42.50", "-42.5", false},
		{"1,234.56", "1234.56", false},
		{"12,34", "12.34", false},
		{"€ -7,99", "-7.99", false},
		{"$3.00", "3", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got.String(), tt.input)
	}
}

func TestStats(t *testing.T) {
	input := `!Account
NChecking
TBank
^
!Type:Bank
D01/15/24
T-42.50
LGroceries
^
D02/20/24
T10.00
^
`
	p := parse(t, input)
	stats := p.Stats()

	assert.Equal(t, 1, stats.Accounts)
	assert.Equal(t, 2, stats.Transactions)
	assert.Equal(t, "2024-01-15", stats.StartDate)
	assert.Equal(t, "2024-02-20", stats.EndDate)
	assert.Equal(t, 1, stats.Currencies["EUR"])

	histogram, ok := stats.Other["field_histogram"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 2, histogram["date"])
	assert.Equal(t, 1, histogram["category"])
}
