package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// BalanceTolerance is the largest debit/credit disagreement accepted on a
// posting, in minor currency units. Amounts cross the core boundary as
// integers, so only a single-unit rounding allowance from upstream
// conversion survives.
const BalanceTolerance int64 = 1

// Line is one prospective ledger entry. Exactly one of Debit/Credit must be
// positive; construct through NewDebitLine/NewCreditLine rather than struct
// literals so malformed legs are rejected up front.
type Line struct {
	AccountCode string
	Debit       int64
	Credit      int64
	Description string
	TenantID    *int64
	PropertyID  *int64
	Fiscal      fiscal.Period
}

// NewDebitLine builds a debit leg against the given account code.
func NewDebitLine(code string, amount int64) Line {
	return Line{AccountCode: code, Debit: amount}
}

// NewCreditLine builds a credit leg against the given account code.
func NewCreditLine(code string, amount int64) Line {
	return Line{AccountCode: code, Credit: amount}
}

// Tagged returns a copy of the line stamped with filter context.
func (l Line) Tagged(tenantID, propertyID *int64, period fiscal.Period, description string) Line {
	l.TenantID = tenantID
	l.PropertyID = propertyID
	l.Fiscal = period
	l.Description = description
	return l
}

// Validate rejects malformed legs.
func (l Line) Validate() error {
	if l.AccountCode == "" {
		return errors.New("journal: line missing account code")
	}
	if l.Debit < 0 || l.Credit < 0 {
		return fmt.Errorf("journal: negative amount on account %s", l.AccountCode)
	}
	if (l.Debit == 0) == (l.Credit == 0) {
		return fmt.Errorf("%w (account %s)", shared.ErrInvalidLine, l.AccountCode)
	}
	if l.Fiscal != (fiscal.Period{}) && !l.Fiscal.Valid() {
		return fmt.Errorf("journal: invalid fiscal tag on account %s", l.AccountCode)
	}
	return nil
}

// PostingInput groups everything required to post one transaction.
type PostingInput struct {
	Type          TransactionType
	Date          time.Time
	Fiscal        fiscal.Period
	Description   string
	ReferenceType string
	ReferenceID   string
	CreatedBy     int64
	Lines         []Line
}

// Totals sums the debit and credit sides across all lines.
func (in PostingInput) Totals() (debit, credit int64) {
	for _, line := range in.Lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

// Validate ensures the posting is well formed and balanced. It runs before
// any persistence is attempted.
func (in PostingInput) Validate() error {
	if in.Type == "" {
		return errors.New("journal: transaction type required")
	}
	if in.Date.IsZero() {
		return errors.New("journal: transaction date required")
	}
	if in.Fiscal != (fiscal.Period{}) && !in.Fiscal.Valid() {
		return errors.New("journal: invalid fiscal period")
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	for _, line := range in.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	debit, credit := in.Totals()
	diff := debit - credit
	if diff < 0 {
		diff = -diff
	}
	if diff > BalanceTolerance {
		return fmt.Errorf("%w: debits %d credits %d", shared.ErrUnbalanced, debit, credit)
	}
	return nil
}
