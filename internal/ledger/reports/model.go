package reports

import (
	"fmt"
	"time"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// StatementFilter narrows ledger reads. Every field is optional; zero values
// mean "no constraint". To is treated as inclusive up to end of day.
type StatementFilter struct {
	TenantID      *int64
	PropertyID    *int64
	AccountCode   string
	FiscalYear    int
	FiscalMonth   int
	FiscalQuarter int
	From          *time.Time
	To            *time.Time
}

// Validate rejects malformed filter values. Read paths report these as an
// empty result plus the error rather than failing the reporting surface.
func (f StatementFilter) Validate() error {
	if f.FiscalYear < 0 {
		return fmt.Errorf("%w: fiscal year %d", shared.ErrInvalidFilter, f.FiscalYear)
	}
	if f.FiscalMonth != 0 && !fiscal.ValidMonth(f.FiscalMonth) {
		return fmt.Errorf("%w: fiscal month %d", shared.ErrInvalidFilter, f.FiscalMonth)
	}
	if f.FiscalQuarter != 0 && !fiscal.ValidQuarter(f.FiscalQuarter) {
		return fmt.Errorf("%w: fiscal quarter %d", shared.ErrInvalidFilter, f.FiscalQuarter)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: date range inverted", shared.ErrInvalidFilter)
	}
	return nil
}

// Fingerprint renders the filter into a stable cache key fragment.
func (f StatementFilter) Fingerprint() string {
	tenant, property := int64(0), int64(0)
	if f.TenantID != nil {
		tenant = *f.TenantID
	}
	if f.PropertyID != nil {
		property = *f.PropertyID
	}
	from, to := "", ""
	if f.From != nil {
		from = f.From.Format("2006-01-02")
	}
	if f.To != nil {
		to = f.To.Format("2006-01-02")
	}
	return fmt.Sprintf("t%d:p%d:a%s:y%d:m%d:q%d:%s:%s",
		tenant, property, f.AccountCode, f.FiscalYear, f.FiscalMonth, f.FiscalQuarter, from, to)
}

// Entry is the repository's read-model row: one ledger entry joined with its
// account's name and type.
type Entry struct {
	ID            int64
	TransactionID int64
	AccountCode   string
	AccountName   string
	AccountType   accounts.AccountType
	Debit         int64
	Credit        int64
	Description   string
	TenantID      *int64
	PropertyID    *int64
	Fiscal        fiscal.Period
	Date          time.Time
}

// StatementLine is one statement row annotated with the running balance.
type StatementLine struct {
	EntryID        int64         `json:"entry_id"`
	TransactionID  int64         `json:"transaction_id"`
	AccountCode    string        `json:"account_code"`
	Date           time.Time     `json:"date"`
	Description    string        `json:"description"`
	Debit          int64         `json:"debit"`
	Credit         int64         `json:"credit"`
	TenantID       *int64        `json:"tenant_id,omitempty"`
	PropertyID     *int64        `json:"property_id,omitempty"`
	Fiscal         fiscal.Period `json:"fiscal"`
	RunningBalance int64         `json:"running_balance"`
}

// Summary aggregates the debit/credit totals of a result set.
type Summary struct {
	TotalDebit  int64 `json:"total_debit"`
	TotalCredit int64 `json:"total_credit"`
	Net         int64 `json:"net"`
}

// Statement is the ordered result of a statement query.
type Statement struct {
	Lines   []StatementLine `json:"lines"`
	Summary Summary         `json:"summary"`
}

// AccountActivity aggregates one account's entries within a filter window.
type AccountActivity struct {
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Type        accounts.AccountType `json:"type"`
	TotalDebit  int64                `json:"total_debit"`
	TotalCredit int64                `json:"total_credit"`
	Net         int64                `json:"net"`
	EntryCount  int                  `json:"entry_count"`
}

// AccountSummary is the dashboard aggregate across all touched accounts.
type AccountSummary struct {
	Accounts   []AccountActivity `json:"accounts"`
	GrandTotal Summary           `json:"grand_total"`
}
