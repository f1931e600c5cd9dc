package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// AuditPort records successful postings.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator drops cached report aggregates after the ledger changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Metrics counts posting outcomes.
type Metrics interface {
	PostingAccepted(t TransactionType)
	PostingRejected(reason string)
}

// Service is the journal poster: the only write path into the ledger and the
// only permitted mutator of account balances.
type Service struct {
	repo        Repository
	audit       AuditPort
	invalidator Invalidator
	metrics     Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(logger *slog.Logger, repo Repository, audit AuditPort, invalidator Invalidator, metrics Metrics) *Service {
	return &Service{repo: repo, audit: audit, invalidator: invalidator, metrics: metrics, logger: logger, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]Transaction, error) {
	return s.repo.ListRecent(ctx, limit)
}

// Post validates and persists one posting inside its own transaction scope.
func (s *Service) Post(ctx context.Context, in PostingInput) (Transaction, error) {
	var posted Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := s.PostIn(ctx, tx, in)
		if err != nil {
			return err
		}
		posted = p
		return nil
	})
	if err != nil {
		s.rejected(err)
		return Transaction{}, err
	}
	s.Committed(ctx, posted)
	return posted, nil
}

// PostIn persists one posting inside a caller-supplied scope. Callers
// composing several postings into a larger business operation (tenant
// onboarding posts rent, CAM and deposit together) thread one TxRepository
// through every call so a failure anywhere unwinds everything. The scope is
// a required capability, never an optional parameter.
func (s *Service) PostIn(ctx context.Context, tx TxRepository, in PostingInput) (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}

	// Lock referenced accounts in code order so concurrent postings acquire
	// row locks in the same sequence.
	codes := uniqueCodes(in.Lines)
	locked := make(map[string]accounts.Account, len(codes))
	for _, code := range codes {
		account, err := tx.GetAccountForUpdate(ctx, code)
		if err != nil {
			if errors.Is(err, shared.ErrAccountNotFound) {
				return Transaction{}, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
			}
			return Transaction{}, err
		}
		locked[code] = account
	}

	debitTotal, _ := in.Totals()
	posted, err := tx.InsertTransaction(ctx, in, debitTotal)
	if err != nil {
		return Transaction{}, err
	}

	deltas := make(map[string]int64, len(codes))
	for _, line := range in.Lines {
		account := locked[line.AccountCode]
		entry, err := tx.InsertEntry(ctx, posted.ID, account.ID, in.Date, line)
		if err != nil {
			return Transaction{}, err
		}
		posted.Entries = append(posted.Entries, entry)
		deltas[line.AccountCode] += accounts.BalanceChange(account.Type, line.Debit, line.Credit)
	}

	for _, code := range codes {
		account := locked[code]
		if err := tx.UpdateAccountBalance(ctx, account.ID, account.CurrentBalance+deltas[code]); err != nil {
			return Transaction{}, err
		}
	}

	return posted, nil
}

// Committed records the post-commit effects of successful postings: one
// accepted-posting metric and one audit record per transaction, and a single
// report-cache invalidation. Post calls it itself; callers composing postings
// through PostIn invoke it once their own scope has committed, so postings
// made inside composite flows are counted and audited the same as direct
// ones.
func (s *Service) Committed(ctx context.Context, posted ...Transaction) {
	if len(posted) == 0 {
		return
	}
	for _, p := range posted {
		if s.metrics != nil {
			s.metrics.PostingAccepted(p.Type)
		}
		if s.audit != nil {
			_ = s.audit.Record(ctx, shared.AuditLog{
				ActorID:  p.CreatedBy,
				Action:   "journal.post",
				Entity:   "transaction",
				EntityID: fmt.Sprintf("%d", p.ID),
				Meta: map[string]any{
					"type":         string(p.Type),
					"total_amount": p.TotalAmount,
					"entries":      len(p.Entries),
				},
				At: s.now(),
			})
		}
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil && s.logger != nil {
			s.logger.Warn("invalidate report cache", slog.Any("error", err))
		}
	}
}

func (s *Service) rejected(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.PostingRejected(rejectionReason(err))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrUnbalanced):
		return "unbalanced"
	case errors.Is(err, shared.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, shared.ErrTooFewLines), errors.Is(err, shared.ErrInvalidLine):
		return "invalid_lines"
	default:
		return "store"
	}
}

func uniqueCodes(lines []Line) []string {
	seen := make(map[string]bool, len(lines))
	var codes []string
	for _, line := range lines {
		if !seen[line.AccountCode] {
			seen[line.AccountCode] = true
			codes = append(codes, line.AccountCode)
		}
	}
	sort.Strings(codes)
	return codes
}
