package reports

import "sort"

// BuildStatement annotates ordered entries with a running balance
// (cumulative debit minus credit, starting from zero for each query) and
// totals. Entries must already be sorted by transaction date then entry id.
func BuildStatement(entries []Entry) Statement {
	stmt := Statement{Lines: make([]StatementLine, 0, len(entries))}
	var running int64
	for _, e := range entries {
		running += e.Debit - e.Credit
		stmt.Lines = append(stmt.Lines, StatementLine{
			EntryID:        e.ID,
			TransactionID:  e.TransactionID,
			AccountCode:    e.AccountCode,
			Date:           e.Date,
			Description:    e.Description,
			Debit:          e.Debit,
			Credit:         e.Credit,
			TenantID:       e.TenantID,
			PropertyID:     e.PropertyID,
			Fiscal:         e.Fiscal,
			RunningBalance: running,
		})
		stmt.Summary.TotalDebit += e.Debit
		stmt.Summary.TotalCredit += e.Credit
	}
	stmt.Summary.Net = stmt.Summary.TotalDebit - stmt.Summary.TotalCredit
	return stmt
}

// BuildAccountSummary groups entries by account, producing per-account
// totals sorted by code ascending plus a grand total.
func BuildAccountSummary(entries []Entry) AccountSummary {
	byCode := make(map[string]*AccountActivity)
	for _, e := range entries {
		activity, ok := byCode[e.AccountCode]
		if !ok {
			activity = &AccountActivity{Code: e.AccountCode, Name: e.AccountName, Type: e.AccountType}
			byCode[e.AccountCode] = activity
		}
		activity.TotalDebit += e.Debit
		activity.TotalCredit += e.Credit
		activity.EntryCount++
	}

	summary := AccountSummary{Accounts: make([]AccountActivity, 0, len(byCode))}
	for _, activity := range byCode {
		activity.Net = activity.TotalDebit - activity.TotalCredit
		summary.Accounts = append(summary.Accounts, *activity)
		summary.GrandTotal.TotalDebit += activity.TotalDebit
		summary.GrandTotal.TotalCredit += activity.TotalCredit
	}
	summary.GrandTotal.Net = summary.GrandTotal.TotalDebit - summary.GrandTotal.TotalCredit
	sort.Slice(summary.Accounts, func(i, j int) bool {
		return summary.Accounts[i].Code < summary.Accounts[j].Code
	})
	return summary
}
