package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/shared"
)

type stubEntryRepo struct {
	entries []Entry
	calls   int
}

func (r *stubEntryRepo) FilterEntries(ctx context.Context, filter StatementFilter) ([]Entry, error) {
	r.calls++
	return r.entries, nil
}

func newReportsService(repo Repository, cache *Cache) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, cache)
}

func TestGetStatementInvalidFilter(t *testing.T) {
	repo := &stubEntryRepo{entries: sampleEntries()}
	svc := newReportsService(repo, nil)

	stmt, err := svc.GetStatement(context.Background(), StatementFilter{FiscalMonth: 42})
	require.ErrorIs(t, err, shared.ErrInvalidFilter)
	require.NotNil(t, stmt.Lines)
	require.Empty(t, stmt.Lines)
	require.Zero(t, repo.calls)
}

func TestGetStatement(t *testing.T) {
	repo := &stubEntryRepo{entries: sampleEntries()}
	svc := newReportsService(repo, nil)

	stmt, err := svc.GetStatement(context.Background(), StatementFilter{FiscalYear: 2082})
	require.NoError(t, err)
	require.Len(t, stmt.Lines, 4)
	require.Equal(t, int64(25000), stmt.Summary.TotalDebit)
}

// periodRepo applies the fiscal period constraints the SQL layer implements,
// including the quarter-to-months expansion, over an in-memory entry set.
type periodRepo struct {
	entries []Entry
}

func (r *periodRepo) FilterEntries(ctx context.Context, filter StatementFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if filter.FiscalYear != 0 && e.Fiscal.Year != filter.FiscalYear {
			continue
		}
		if filter.FiscalMonth != 0 && e.Fiscal.Month != filter.FiscalMonth {
			continue
		}
		if filter.FiscalQuarter != 0 {
			months, err := fiscal.QuarterMonths(filter.FiscalQuarter)
			if err != nil {
				return nil, err
			}
			if e.Fiscal.Month != months[0] && e.Fiscal.Month != months[1] && e.Fiscal.Month != months[2] {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func TestGetStatementQuarterFilter(t *testing.T) {
	repo := &periodRepo{}
	for m := 1; m <= 12; m++ {
		repo.entries = append(repo.entries, Entry{
			ID:            int64(m),
			TransactionID: int64(m),
			AccountCode:   "1200",
			Debit:         int64(100 * m),
			Fiscal:        fiscal.Period{Year: 2082, Month: m},
			Date:          time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, m-1, 0),
		})
	}
	svc := newReportsService(repo, nil)

	for q := 1; q <= 4; q++ {
		stmt, err := svc.GetStatement(context.Background(), StatementFilter{FiscalYear: 2082, FiscalQuarter: q})
		require.NoError(t, err)
		require.Lenf(t, stmt.Lines, 3, "quarter %d", q)
		for _, line := range stmt.Lines {
			require.Truef(t, fiscal.MonthInQuarter(line.Fiscal.Month, q),
				"month %d leaked into quarter %d", line.Fiscal.Month, q)
		}
		// Quarter q covers months 3q-2..3q; totals confirm exactly those
		// months were summed.
		first := (q-1)*3 + 1
		want := int64(100 * (first + first + 1 + first + 2))
		require.Equal(t, want, stmt.Summary.TotalDebit)
	}
}

func TestGetAccountSummaryUsesCache(t *testing.T) {
	repo := &stubEntryRepo{entries: sampleEntries()}
	cache := newTestCache(t)
	svc := newReportsService(repo, cache)
	ctx := context.Background()

	filter := StatementFilter{FiscalYear: 2082, FiscalMonth: 1}
	first, err := svc.GetAccountSummary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	second, err := svc.GetAccountSummary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
	require.Equal(t, first, second)

	// Invalidation forces a rebuild.
	require.NoError(t, cache.Invalidate(ctx))
	_, err = svc.GetAccountSummary(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestGetAccountSummaryIgnoresAccountCode(t *testing.T) {
	repo := &stubEntryRepo{entries: sampleEntries()}
	svc := newReportsService(repo, nil)

	withCode, err := svc.GetAccountSummary(context.Background(), StatementFilter{AccountCode: "1200"})
	require.NoError(t, err)
	without, err := svc.GetAccountSummary(context.Background(), StatementFilter{})
	require.NoError(t, err)
	require.Equal(t, without, withCode)
}
