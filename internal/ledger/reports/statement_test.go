package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/shared"
)

func sampleEntries() []Entry {
	tenant := int64(7)
	day := func(d int) time.Time {
		return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
	}
	period := fiscal.Period{Year: 2082, Month: 1}
	return []Entry{
		{ID: 1, TransactionID: 10, AccountCode: accounts.CodeReceivable, AccountName: "Accounts Receivable", AccountType: accounts.AccountTypeAsset, Debit: 15000, TenantID: &tenant, Fiscal: period, Date: day(1)},
		{ID: 2, TransactionID: 10, AccountCode: accounts.CodeRentalIncome, AccountName: "Rental Income", AccountType: accounts.AccountTypeRevenue, Credit: 15000, TenantID: &tenant, Fiscal: period, Date: day(1)},
		{ID: 3, TransactionID: 11, AccountCode: accounts.CodeCash, AccountName: "Cash", AccountType: accounts.AccountTypeAsset, Debit: 10000, TenantID: &tenant, Fiscal: period, Date: day(9)},
		{ID: 4, TransactionID: 11, AccountCode: accounts.CodeReceivable, AccountName: "Accounts Receivable", AccountType: accounts.AccountTypeAsset, Credit: 10000, TenantID: &tenant, Fiscal: period, Date: day(9)},
	}
}

func TestBuildStatementRunningBalance(t *testing.T) {
	stmt := BuildStatement(sampleEntries())
	require.Len(t, stmt.Lines, 4)

	var prev int64
	for i, line := range stmt.Lines {
		require.Equalf(t, prev+line.Debit-line.Credit, line.RunningBalance, "line %d", i)
		prev = line.RunningBalance
	}

	require.Equal(t, int64(25000), stmt.Summary.TotalDebit)
	require.Equal(t, int64(25000), stmt.Summary.TotalCredit)
	require.Equal(t, int64(0), stmt.Summary.Net)
	require.Equal(t, int64(0), stmt.Lines[3].RunningBalance)
}

func TestBuildStatementEmpty(t *testing.T) {
	stmt := BuildStatement(nil)
	require.NotNil(t, stmt.Lines)
	require.Empty(t, stmt.Lines)
	require.Equal(t, Summary{}, stmt.Summary)
}

func TestBuildStatementPure(t *testing.T) {
	entries := sampleEntries()
	require.Equal(t, BuildStatement(entries), BuildStatement(entries))
}

func TestBuildAccountSummary(t *testing.T) {
	summary := BuildAccountSummary(sampleEntries())
	require.Len(t, summary.Accounts, 3)

	// Sorted by code ascending.
	require.Equal(t, accounts.CodeCash, summary.Accounts[0].Code)
	require.Equal(t, accounts.CodeReceivable, summary.Accounts[1].Code)
	require.Equal(t, accounts.CodeRentalIncome, summary.Accounts[2].Code)

	receivable := summary.Accounts[1]
	require.Equal(t, int64(15000), receivable.TotalDebit)
	require.Equal(t, int64(10000), receivable.TotalCredit)
	require.Equal(t, int64(5000), receivable.Net)
	require.Equal(t, 2, receivable.EntryCount)
	require.Equal(t, accounts.AccountTypeAsset, receivable.Type)

	require.Equal(t, int64(25000), summary.GrandTotal.TotalDebit)
	require.Equal(t, int64(25000), summary.GrandTotal.TotalCredit)
	require.Equal(t, int64(0), summary.GrandTotal.Net)
}

func TestBuildAccountSummaryEmpty(t *testing.T) {
	summary := BuildAccountSummary(nil)
	require.NotNil(t, summary.Accounts)
	require.Empty(t, summary.Accounts)
	require.Equal(t, Summary{}, summary.GrandTotal)
}

func TestStatementFilterValidate(t *testing.T) {
	from := time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		filter  StatementFilter
		wantErr bool
	}{
		{name: "empty", filter: StatementFilter{}},
		{name: "year and month", filter: StatementFilter{FiscalYear: 2082, FiscalMonth: 4}},
		{name: "quarter", filter: StatementFilter{FiscalYear: 2082, FiscalQuarter: 2}},
		{name: "negative year", filter: StatementFilter{FiscalYear: -1}, wantErr: true},
		{name: "month out of range", filter: StatementFilter{FiscalMonth: 13}, wantErr: true},
		{name: "quarter out of range", filter: StatementFilter{FiscalQuarter: 5}, wantErr: true},
		{name: "inverted date range", filter: StatementFilter{From: &from, To: &to}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, shared.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStatementFilterFingerprint(t *testing.T) {
	tenant := int64(7)
	a := StatementFilter{TenantID: &tenant, FiscalYear: 2082, FiscalMonth: 1}
	b := StatementFilter{TenantID: &tenant, FiscalYear: 2082, FiscalMonth: 1}
	c := StatementFilter{TenantID: &tenant, FiscalYear: 2082, FiscalMonth: 2}

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
