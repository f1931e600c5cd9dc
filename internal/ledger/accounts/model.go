package accounts

import "time"

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Well-known account codes seeded into every chart. Builders and domain
// flows address accounts exclusively through these codes.
const (
	CodeCash             = "1000"
	CodeBank             = "1100"
	CodeReceivable       = "1200"
	CodeSecurityDeposits = "2100"
	CodeOtherPayables    = "2200"
	CodeOwnerEquity      = "3000"
	CodeRentalIncome     = "4000"
	CodeOperatingExpense = "5000"
)

// Account models a chart of accounts node. CurrentBalance is in minor
// currency units (paisa) and is written only by the journal poster.
type Account struct {
	ID             int64
	Code           string
	Name           string
	Type           AccountType
	CurrentBalance int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BalanceChange returns the signed delta an entry applies to an account of
// the given type. Debits increase assets and expenses; credits increase
// liabilities, revenue and equity. This is the single sign authority for
// every write path.
func BalanceChange(t AccountType, debit, credit int64) int64 {
	switch t {
	case AccountTypeLiability, AccountTypeRevenue, AccountTypeEquity:
		return credit - debit
	default:
		return debit - credit
	}
}

// SeedAccount describes one fixed chart entry created at system seed time.
type SeedAccount struct {
	Code string
	Name string
	Type AccountType
}

// DefaultChart is the fixed chart created for a fresh installation.
func DefaultChart() []SeedAccount {
	return []SeedAccount{
		{Code: CodeCash, Name: "Cash", Type: AccountTypeAsset},
		{Code: CodeBank, Name: "Bank", Type: AccountTypeAsset},
		{Code: CodeReceivable, Name: "Accounts Receivable", Type: AccountTypeAsset},
		{Code: CodeSecurityDeposits, Name: "Security Deposits Held", Type: AccountTypeLiability},
		{Code: CodeOtherPayables, Name: "Other Payables", Type: AccountTypeLiability},
		{Code: CodeOwnerEquity, Name: "Owner Equity", Type: AccountTypeEquity},
		{Code: CodeRentalIncome, Name: "Rental Income", Type: AccountTypeRevenue},
		{Code: CodeOperatingExpense, Name: "Operating Expenses", Type: AccountTypeExpense},
	}
}
