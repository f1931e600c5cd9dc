package journal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/liability"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// memoryLedger implements Repository and TxRepository against maps, with
// snapshot-restore rollback so failed scopes leave no partial state.
type memoryLedger struct {
	accounts     map[string]accounts.Account
	transactions []Transaction
	entries      []LedgerEntry
	liabilities  []liability.Record
	nextID       int64
}

func newMemoryLedger() *memoryLedger {
	l := &memoryLedger{accounts: make(map[string]accounts.Account)}
	var id int64
	for _, seed := range accounts.DefaultChart() {
		id++
		l.accounts[seed.Code] = accounts.Account{
			ID:       id,
			Code:     seed.Code,
			Name:     seed.Name,
			Type:     seed.Type,
			IsActive: true,
		}
	}
	l.nextID = id
	return l
}

func (l *memoryLedger) snapshot() *memoryLedger {
	copied := &memoryLedger{
		accounts:     make(map[string]accounts.Account, len(l.accounts)),
		transactions: append([]Transaction(nil), l.transactions...),
		entries:      append([]LedgerEntry(nil), l.entries...),
		liabilities:  append([]liability.Record(nil), l.liabilities...),
		nextID:       l.nextID,
	}
	for code, a := range l.accounts {
		copied.accounts[code] = a
	}
	return copied
}

func (l *memoryLedger) restore(from *memoryLedger) {
	l.accounts = from.accounts
	l.transactions = from.transactions
	l.entries = from.entries
	l.liabilities = from.liabilities
	l.nextID = from.nextID
}

func (l *memoryLedger) ListRecent(ctx context.Context, limit int) ([]Transaction, error) {
	out := append([]Transaction(nil), l.transactions...)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (l *memoryLedger) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	before := l.snapshot()
	if err := fn(ctx, (*memoryTx)(l)); err != nil {
		l.restore(before)
		return err
	}
	return nil
}

type memoryTx memoryLedger

func (tx *memoryTx) GetAccountForUpdate(ctx context.Context, code string) (accounts.Account, error) {
	a, ok := tx.accounts[code]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (tx *memoryTx) UpdateAccountBalance(ctx context.Context, accountID int64, balance int64) error {
	for code, a := range tx.accounts {
		if a.ID == accountID {
			a.CurrentBalance = balance
			tx.accounts[code] = a
			return nil
		}
	}
	return shared.ErrAccountNotFound
}

func (tx *memoryTx) InsertTransaction(ctx context.Context, in PostingInput, total int64) (Transaction, error) {
	tx.nextID++
	t := Transaction{
		ID:            tx.nextID,
		Type:          in.Type,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		TotalAmount:   total,
		Status:        StatusPosted,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     time.Now(),
	}
	tx.transactions = append(tx.transactions, t)
	return t, nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, transactionID int64, accountID int64, date time.Time, line Line) (LedgerEntry, error) {
	tx.nextID++
	entry := LedgerEntry{
		ID:            tx.nextID,
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
	tx.entries = append(tx.entries, entry)
	return entry, nil
}

func (tx *memoryTx) InsertLiability(ctx context.Context, in liability.CreateInput) (liability.Record, error) {
	if err := in.Validate(); err != nil {
		return liability.Record{}, err
	}
	tx.nextID++
	rec := liability.Record{
		ID:            tx.nextID,
		TenantID:      in.TenantID,
		PropertyID:    in.PropertyID,
		Kind:          in.Kind,
		Amount:        in.Amount,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Status:        liability.StatusOpen,
		CreatedAt:     time.Now(),
	}
	tx.liabilities = append(tx.liabilities, rec)
	return rec, nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type countingInvalidator struct {
	calls int
}

func (i *countingInvalidator) Invalidate(ctx context.Context) error {
	i.calls++
	return nil
}

type memoryMetrics struct {
	accepted map[TransactionType]int
	rejected map[string]int
}

func newMemoryMetrics() *memoryMetrics {
	return &memoryMetrics{accepted: make(map[TransactionType]int), rejected: make(map[string]int)}
}

func (m *memoryMetrics) PostingAccepted(t TransactionType) { m.accepted[t]++ }
func (m *memoryMetrics) PostingRejected(reason string)     { m.rejected[reason]++ }

func newTestService(repo Repository, audit AuditPort, inv Invalidator, metrics Metrics) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, audit, inv, metrics)
}

func testDate() time.Time {
	return time.Date(2026, time.April, 14, 0, 0, 0, 0, time.UTC)
}

func rentChargeInput(amount int64) PostingInput {
	period := fiscal.Period{Year: 2082, Month: 1}
	return PostingInput{
		Type:      TypeRentCharge,
		Date:      testDate(),
		Fiscal:    period,
		CreatedBy: 42,
		Lines: []Line{
			NewDebitLine(accounts.CodeReceivable, amount),
			NewCreditLine(accounts.CodeRentalIncome, amount),
		},
	}
}

func TestPostRentCharge(t *testing.T) {
	ledger := newMemoryLedger()
	audit := &memoryAudit{}
	inv := &countingInvalidator{}
	metrics := newMemoryMetrics()
	svc := newTestService(ledger, audit, inv, metrics)

	posted, err := svc.Post(context.Background(), rentChargeInput(15000))
	require.NoError(t, err)
	require.NotZero(t, posted.ID)
	require.Equal(t, StatusPosted, posted.Status)
	require.Equal(t, int64(15000), posted.TotalAmount)
	require.Len(t, posted.Entries, 2)

	require.Equal(t, int64(15000), ledger.accounts[accounts.CodeReceivable].CurrentBalance)
	require.Equal(t, int64(15000), ledger.accounts[accounts.CodeRentalIncome].CurrentBalance)

	require.Equal(t, 1, metrics.accepted[TypeRentCharge])
	require.Equal(t, 1, inv.calls)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "journal.post", audit.logs[0].Action)
	require.Equal(t, int64(42), audit.logs[0].ActorID)
}

func TestPostAnonymousActor(t *testing.T) {
	// Postings without an acting user are the normal case when no actor
	// header reaches the API. They must persist with actor 0, not fail.
	ledger := newMemoryLedger()
	audit := &memoryAudit{}
	svc := newTestService(ledger, audit, nil, nil)

	in := rentChargeInput(15000)
	in.CreatedBy = 0
	posted, err := svc.Post(context.Background(), in)
	require.NoError(t, err)
	require.Zero(t, posted.CreatedBy)

	require.Len(t, ledger.transactions, 1)
	require.Zero(t, ledger.transactions[0].CreatedBy)
	require.Len(t, audit.logs, 1)
	require.Zero(t, audit.logs[0].ActorID)
}

func TestCommittedRecordsEachPosting(t *testing.T) {
	audit := &memoryAudit{}
	inv := &countingInvalidator{}
	metrics := newMemoryMetrics()
	svc := newTestService(newMemoryLedger(), audit, inv, metrics)
	ctx := context.Background()

	svc.Committed(ctx,
		Transaction{ID: 1, Type: TypeRentCharge, TotalAmount: 15000, CreatedBy: 42},
		Transaction{ID: 2, Type: TypeSecurityDeposit, TotalAmount: 20000},
	)

	require.Equal(t, 1, metrics.accepted[TypeRentCharge])
	require.Equal(t, 1, metrics.accepted[TypeSecurityDeposit])
	require.Len(t, audit.logs, 2)
	require.Equal(t, "journal.post", audit.logs[0].Action)
	require.Equal(t, "journal.post", audit.logs[1].Action)
	// One cache invalidation per committed scope, not per transaction.
	require.Equal(t, 1, inv.calls)

	svc.Committed(ctx)
	require.Equal(t, 1, inv.calls)
}

func TestPostPaymentSettlesReceivable(t *testing.T) {
	ledger := newMemoryLedger()
	svc := newTestService(ledger, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Post(ctx, rentChargeInput(15000))
	require.NoError(t, err)

	payment := PostingInput{
		Type:   TypePaymentReceived,
		Date:   testDate().AddDate(0, 0, 10),
		Fiscal: fiscal.Period{Year: 2082, Month: 1},
		Lines: []Line{
			NewDebitLine(accounts.CodeCash, 15000),
			NewCreditLine(accounts.CodeReceivable, 15000),
		},
	}
	_, err = svc.Post(ctx, payment)
	require.NoError(t, err)

	require.Equal(t, int64(0), ledger.accounts[accounts.CodeReceivable].CurrentBalance)
	require.Equal(t, int64(15000), ledger.accounts[accounts.CodeCash].CurrentBalance)
	require.Equal(t, int64(15000), ledger.accounts[accounts.CodeRentalIncome].CurrentBalance)
}

func TestPostUnknownAccountRollsBack(t *testing.T) {
	ledger := newMemoryLedger()
	metrics := newMemoryMetrics()
	svc := newTestService(ledger, nil, nil, metrics)

	in := PostingInput{
		Type: TypeGeneric,
		Date: testDate(),
		Lines: []Line{
			NewDebitLine(accounts.CodeReceivable, 500),
			NewCreditLine("9999", 500),
		},
	}
	_, err := svc.Post(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrAccountNotFound)

	require.Empty(t, ledger.transactions)
	require.Empty(t, ledger.entries)
	for code, a := range ledger.accounts {
		require.Zerof(t, a.CurrentBalance, "account %s touched by failed posting", code)
	}
	require.Equal(t, 1, metrics.rejected["account_not_found"])
}

func TestPostUnbalancedRejected(t *testing.T) {
	ledger := newMemoryLedger()
	metrics := newMemoryMetrics()
	svc := newTestService(ledger, nil, nil, metrics)

	in := PostingInput{
		Type: TypeGeneric,
		Date: testDate(),
		Lines: []Line{
			NewDebitLine(accounts.CodeCash, 1000),
			NewCreditLine(accounts.CodeRentalIncome, 500),
		},
	}
	_, err := svc.Post(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, ledger.transactions)
	require.Equal(t, 1, metrics.rejected["unbalanced"])
}

func TestBalancesMatchEntryFold(t *testing.T) {
	ledger := newMemoryLedger()
	svc := newTestService(ledger, nil, nil, nil)
	ctx := context.Background()
	period := fiscal.Period{Year: 2082, Month: 2}

	postings := []PostingInput{
		rentChargeInput(15000),
		rentChargeInput(12500),
		{
			Type: TypeSecurityDeposit, Date: testDate(), Fiscal: period,
			Lines: []Line{
				NewDebitLine(accounts.CodeBank, 20000),
				NewCreditLine(accounts.CodeSecurityDeposits, 20000),
			},
		},
		{
			Type: TypePaymentReceived, Date: testDate(), Fiscal: period,
			Lines: []Line{
				NewDebitLine(accounts.CodeCash, 10000),
				NewCreditLine(accounts.CodeReceivable, 10000),
			},
		},
		{
			Type: TypeGeneric, Date: testDate(), Fiscal: period,
			Lines: []Line{
				NewDebitLine(accounts.CodeOperatingExpense, 3000),
				NewCreditLine(accounts.CodeCash, 1800),
				NewCreditLine(accounts.CodeOtherPayables, 1200),
			},
		},
	}
	for _, in := range postings {
		_, err := svc.Post(ctx, in)
		require.NoError(t, err)
	}

	// Every stored balance equals the fold of its entries.
	folds := make(map[string]int64)
	for _, e := range ledger.entries {
		folds[e.AccountCode] += accounts.BalanceChange(ledger.accounts[e.AccountCode].Type, e.Debit, e.Credit)
	}
	for code, a := range ledger.accounts {
		require.Equalf(t, folds[code], a.CurrentBalance, "account %s", code)
	}

	// And the ledger as a whole stays balanced.
	var debits, credits int64
	for _, e := range ledger.entries {
		debits += e.Debit
		credits += e.Credit
	}
	require.Equal(t, debits, credits)
}

func TestPostInSharedScopeUnwindsTogether(t *testing.T) {
	ledger := newMemoryLedger()
	svc := newTestService(ledger, nil, nil, nil)
	ctx := context.Background()

	err := ledger.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := svc.PostIn(ctx, tx, rentChargeInput(15000)); err != nil {
			return err
		}
		bad := PostingInput{
			Type: TypeGeneric,
			Date: testDate(),
			Lines: []Line{
				NewDebitLine("9999", 100),
				NewCreditLine(accounts.CodeCash, 100),
			},
		}
		_, err := svc.PostIn(ctx, tx, bad)
		return err
	})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)

	require.Empty(t, ledger.transactions)
	require.Empty(t, ledger.entries)
	require.Zero(t, ledger.accounts[accounts.CodeReceivable].CurrentBalance)
}

func TestRejectionReason(t *testing.T) {
	require.Equal(t, "unbalanced", rejectionReason(shared.ErrUnbalanced))
	require.Equal(t, "account_not_found", rejectionReason(shared.ErrAccountNotFound))
	require.Equal(t, "invalid_lines", rejectionReason(shared.ErrTooFewLines))
	require.Equal(t, "invalid_lines", rejectionReason(shared.ErrInvalidLine))
	require.Equal(t, "store", rejectionReason(context.DeadlineExceeded))
}
