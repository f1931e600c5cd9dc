package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/liability"
	"github.com/gharbeti/gharbeti/internal/platform/db"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// Repository encapsulates DB operations for the journal.
type Repository interface {
	ListRecent(ctx context.Context, limit int) ([]Transaction, error)
	// WithTx opens the atomic scope every posting runs inside. Callers
	// composing several postings into one business operation pass the same
	// TxRepository through each PostIn call.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the write operations available within a posting
// scope. It carries the account balance ops and the liability shadow insert
// because those writes must share the posting's transaction.
type TxRepository interface {
	GetAccountForUpdate(ctx context.Context, code string) (accounts.Account, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, balance int64) error
	InsertTransaction(ctx context.Context, in PostingInput, total int64) (Transaction, error)
	InsertEntry(ctx context.Context, transactionID int64, accountID int64, date time.Time, line Line) (LedgerEntry, error)
	InsertLiability(ctx context.Context, in liability.CreateInput) (liability.Record, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT id, type, transaction_date, nepali_year, nepali_month, description, reference_type, reference_id, total_amount, status, created_by, created_at
FROM transactions ORDER BY transaction_date DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Date, &t.Fiscal.Year, &t.Fiscal.Month, &t.Description,
			&t.ReferenceType, &t.ReferenceID, &t.TotalAmount, &t.Status, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// GetAccountForUpdate locks the account row for the remainder of the posting
// scope so concurrent balance read-modify-writes serialize.
func (r *txRepository) GetAccountForUpdate(ctx context.Context, code string) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `SELECT id, code, name, type, current_balance, is_active, created_at, updated_at
FROM accounts WHERE code=$1 FOR UPDATE`, code).
		Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.CurrentBalance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, shared.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *txRepository) UpdateAccountBalance(ctx context.Context, accountID int64, balance int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET current_balance=$2, updated_at=NOW() WHERE id=$1`, accountID, balance)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, in PostingInput, total int64) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions (type, transaction_date, nepali_year, nepali_month, description, reference_type, reference_id, total_amount, status, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'POSTED',$9) RETURNING id, created_at`,
		in.Type, in.Date, in.Fiscal.Year, in.Fiscal.Month, in.Description, in.ReferenceType, in.ReferenceID, total, in.CreatedBy)
	t := Transaction{
		Type:          in.Type,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		TotalAmount:   total,
		Status:        StatusPosted,
		CreatedBy:     in.CreatedBy,
	}
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_transactions_reference" {
			return Transaction{}, fmt.Errorf("%w: %s/%s", shared.ErrDuplicateReference, in.ReferenceType, in.ReferenceID)
		}
		return Transaction{}, err
	}
	return t, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, transactionID int64, accountID int64, date time.Time, line Line) (LedgerEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO ledger_entries (transaction_id, account_id, account_code, debit_amount, credit_amount, description, tenant_id, property_id, nepali_year, nepali_month, transaction_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id, created_at`,
		transactionID, accountID, line.AccountCode, line.Debit, line.Credit, line.Description,
		nullIntPtr(line.TenantID), nullIntPtr(line.PropertyID), line.Fiscal.Year, line.Fiscal.Month, date)
	entry := LedgerEntry{
		TransactionID: transactionID,
		AccountID:     accountID,
		AccountCode:   line.AccountCode,
		Debit:         line.Debit,
		Credit:        line.Credit,
		Description:   line.Description,
		TenantID:      line.TenantID,
		PropertyID:    line.PropertyID,
		Fiscal:        line.Fiscal,
		Date:          date,
	}
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLiability(ctx context.Context, in liability.CreateInput) (liability.Record, error) {
	if err := in.Validate(); err != nil {
		return liability.Record{}, err
	}
	row := r.tx.QueryRow(ctx, `INSERT INTO liabilities (tenant_id, property_id, kind, amount, description, reference_type, reference_id, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,'OPEN') RETURNING id, created_at`,
		nullIntPtr(in.TenantID), nullIntPtr(in.PropertyID), in.Kind, in.Amount, in.Description, in.ReferenceType, in.ReferenceID)
	rec := liability.Record{
		TenantID:      in.TenantID,
		PropertyID:    in.PropertyID,
		Kind:          in.Kind,
		Amount:        in.Amount,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Status:        liability.StatusOpen,
	}
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return liability.Record{}, err
	}
	return rec, nil
}

// nullIntPtr maps absent tenant/property tags to SQL NULL. The created_by
// column is NOT NULL and stores 0 for anonymous postings, so it takes the
// value directly.
func nullIntPtr(val *int64) any {
	if val == nil {
		return nil
	}
	if *val == 0 {
		return nil
	}
	return *val
}
