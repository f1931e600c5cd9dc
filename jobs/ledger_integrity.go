package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
)

// TaskLedgerIntegrity recomputes every account balance from its entries.
const TaskLedgerIntegrity = "ledger:integrity"

// NewLedgerIntegrityTask builds the task submitted by the cron scheduler.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil)
}

// IntegrityMetrics counts accounts failing the fold check.
type IntegrityMetrics interface {
	IntegrityFailure()
}

// LedgerIntegrityJob verifies that each account's stored balance equals the
// fold of BalanceChange over every entry posted against it. A mismatch means
// something other than the journal poster wrote a balance.
type LedgerIntegrityJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics IntegrityMetrics
}

func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics IntegrityMetrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{pool: pool, logger: logger, metrics: metrics}
}

// Handle adapts the job to an asynq handler.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, _ *asynq.Task) error {
	return j.Run(ctx)
}

// Run scans the whole chart and reports every divergent account.
func (j *LedgerIntegrityJob) Run(ctx context.Context) error {
	rows, err := j.pool.Query(ctx, `SELECT id, code, type, current_balance FROM accounts`)
	if err != nil {
		return fmt.Errorf("jobs: list accounts: %w", err)
	}
	defer rows.Close()

	type chartRow struct {
		id      int64
		code    string
		typ     accounts.AccountType
		balance int64
	}
	var chart []chartRow
	for rows.Next() {
		var a chartRow
		if err := rows.Scan(&a.id, &a.code, &a.typ, &a.balance); err != nil {
			return err
		}
		chart = append(chart, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	mismatches := make([]string, len(chart))
	for i, account := range chart {
		i, account := i, account
		g.Go(func() error {
			var debit, credit int64
			err := j.pool.QueryRow(ctx, `SELECT COALESCE(SUM(debit_amount),0), COALESCE(SUM(credit_amount),0)
FROM ledger_entries WHERE account_id=$1`, account.id).Scan(&debit, &credit)
			if err != nil {
				return err
			}
			fold := accounts.BalanceChange(account.typ, debit, credit)
			if fold != account.balance {
				mismatches[i] = account.code
				if j.logger != nil {
					j.logger.Error("ledger integrity mismatch",
						slog.String("account", account.code),
						slog.Int64("stored", account.balance),
						slog.Int64("fold", fold))
				}
				if j.metrics != nil {
					j.metrics.IntegrityFailure()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed []string
	for _, code := range mismatches {
		if code != "" {
			failed = append(failed, code)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("jobs: ledger integrity failed for accounts %v", failed)
	}
	if j.logger != nil {
		j.logger.Info("ledger integrity check passed", slog.Int("accounts", len(chart)))
	}
	return nil
}
