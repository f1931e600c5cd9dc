package reports

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharbeti/gharbeti/internal/fiscal"
)

type Repository interface {
	FilterEntries(ctx context.Context, filter StatementFilter) ([]Entry, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) FilterEntries(ctx context.Context, filter StatementFilter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	arg := func(val any) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.TenantID != nil {
		where = append(where, "e.tenant_id="+arg(*filter.TenantID))
	}
	if filter.PropertyID != nil {
		where = append(where, "e.property_id="+arg(*filter.PropertyID))
	}
	if filter.AccountCode != "" {
		where = append(where, "e.account_code="+arg(filter.AccountCode))
	}
	if filter.FiscalYear != 0 {
		where = append(where, "e.nepali_year="+arg(filter.FiscalYear))
	}
	if filter.FiscalMonth != 0 {
		where = append(where, "e.nepali_month="+arg(filter.FiscalMonth))
	}
	if filter.FiscalQuarter != 0 {
		months, err := fiscal.QuarterMonths(filter.FiscalQuarter)
		if err != nil {
			return nil, err
		}
		where = append(where, "e.nepali_month IN ("+arg(months[0])+","+arg(months[1])+","+arg(months[2])+")")
	}
	if filter.From != nil {
		where = append(where, "e.transaction_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "e.transaction_date <= "+arg(fiscal.EndOfDay(*filter.To)))
	}

	query := `SELECT e.id, e.transaction_id, e.account_code, a.name, a.type, e.debit_amount, e.credit_amount,
e.description, e.tenant_id, e.property_id, e.nepali_year, e.nepali_month, e.transaction_date
FROM ledger_entries e JOIN accounts a ON a.id = e.account_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.transaction_date ASC, e.id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountCode, &e.AccountName, &e.AccountType,
			&e.Debit, &e.Credit, &e.Description, &e.TenantID, &e.PropertyID,
			&e.Fiscal.Year, &e.Fiscal.Month, &e.Date); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
