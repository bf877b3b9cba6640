package model

// AccountType classifies accounts in a ledger book.
type AccountType string

const (
	AccountTypeBank      AccountType = "BANK"
	AccountTypeExpense   AccountType = "EXPENSE"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeCategory  AccountType = "CATEGORY"
	AccountTypeClass     AccountType = "CLASS"
	AccountTypeError     AccountType = "ERROR"
	AccountTypeRoot      AccountType = "ROOT"
)

// DefaultCurrency is used when a source format carries no currency information.
const DefaultCurrency = "EUR"

// Account is one node in the hierarchical chart of accounts. The ID doubles
// as the map key within a Book; child IDs are colon-joined paths.
type Account struct {
	ID          string      `yaml:"account_id"`
	Name        string      `yaml:"name"`
	Type        AccountType `yaml:"account_type"`
	Description string      `yaml:"description,omitempty"`
	Currency    string      `yaml:"currency"`
	ParentID    string      `yaml:"parent_account_id,omitempty"`
}
