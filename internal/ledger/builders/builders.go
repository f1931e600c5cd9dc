// Package builders translates domain events into the line-item sets the
// journal poster expects. Builders are pure: they pick account codes, amounts
// and context tags, and never persist anything.
package builders

import (
	"errors"
	"fmt"
	"time"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/ledger/journal"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// ErrInvalidAmount rejects non-positive charge or payment amounts.
var ErrInvalidAmount = errors.New("builders: amount must be a positive minor-unit integer")

// ReceiptMethod selects the account money physically arrives in.
type ReceiptMethod string

const (
	MethodCash ReceiptMethod = "CASH"
	MethodBank ReceiptMethod = "BANK"
)

// DebitCode maps the method to its chart code. Unknown methods fall back to
// cash, matching how counter staff record unlabelled receipts.
func (m ReceiptMethod) DebitCode() string {
	if m == MethodBank {
		return accounts.CodeBank
	}
	return accounts.CodeCash
}

// ChargeInput carries the shared context of a periodic charge.
type ChargeInput struct {
	TenantID    *int64
	PropertyID  *int64
	Amount      int64
	Date        time.Time
	Fiscal      fiscal.Period
	ReferenceID string
	CreatedBy   int64
	Description string
}

// RentCharge debits Accounts Receivable and credits Rental Income.
func RentCharge(in ChargeInput) (journal.PostingInput, error) {
	if in.Amount <= 0 {
		return journal.PostingInput{}, ErrInvalidAmount
	}
	desc := in.Description
	if desc == "" {
		desc = fmt.Sprintf("Rent charge %s", in.Fiscal)
	}
	return journal.PostingInput{
		Type:          journal.TypeRentCharge,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   desc,
		ReferenceType: "rent",
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
		Lines: []journal.Line{
			journal.NewDebitLine(accounts.CodeReceivable, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
			journal.NewCreditLine(accounts.CodeRentalIncome, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
		},
	}, nil
}

// CamCharge debits Accounts Receivable and credits the revenue account.
// CAM shares the rental income code in the current chart.
func CamCharge(in ChargeInput) (journal.PostingInput, error) {
	if in.Amount <= 0 {
		return journal.PostingInput{}, ErrInvalidAmount
	}
	desc := in.Description
	if desc == "" {
		desc = fmt.Sprintf("CAM charge %s", in.Fiscal)
	}
	return journal.PostingInput{
		Type:          journal.TypeCamCharge,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   desc,
		ReferenceType: "cam",
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
		Lines: []journal.Line{
			journal.NewDebitLine(accounts.CodeReceivable, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
			journal.NewCreditLine(accounts.CodeRentalIncome, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
		},
	}, nil
}

// SecurityDepositInput extends the charge context with the receipt method.
type SecurityDepositInput struct {
	ChargeInput
	Method ReceiptMethod
}

// SecurityDeposit debits cash/bank and credits Security Deposits Held.
// The mirrored liability record is written by the caller in the same scope.
func SecurityDeposit(in SecurityDepositInput) (journal.PostingInput, error) {
	if in.Amount <= 0 {
		return journal.PostingInput{}, ErrInvalidAmount
	}
	desc := in.Description
	if desc == "" {
		desc = "Security deposit received"
	}
	return journal.PostingInput{
		Type:          journal.TypeSecurityDeposit,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   desc,
		ReferenceType: "security_deposit",
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
		Lines: []journal.Line{
			journal.NewDebitLine(in.Method.DebitCode(), in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
			journal.NewCreditLine(accounts.CodeSecurityDeposits, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
		},
	}, nil
}

// ReceivablePolicy decides which account a tenant payment credits when the
// chart lacks Accounts Receivable. The historical data-migration chart could
// miss the AR account entirely; crediting revenue directly was the fallback.
// The policy makes that choice explicit and testable.
type ReceivablePolicy int

const (
	// RequireReceivable fails the posting when AR is absent.
	RequireReceivable ReceivablePolicy = iota
	// FallbackToRevenue credits Rental Income directly when AR is absent.
	FallbackToRevenue
)

// CreditCode resolves the credit-side account for a payment.
func (p ReceivablePolicy) CreditCode(receivableExists bool) (string, error) {
	if receivableExists {
		return accounts.CodeReceivable, nil
	}
	if p == FallbackToRevenue {
		return accounts.CodeRentalIncome, nil
	}
	return "", fmt.Errorf("%w: %s", shared.ErrAccountNotFound, accounts.CodeReceivable)
}

// PaymentInput carries the context of a received payment.
type PaymentInput struct {
	TenantID    *int64
	PropertyID  *int64
	Amount      int64
	Date        time.Time
	Fiscal      fiscal.Period
	Method      ReceiptMethod
	ReferenceID string
	CreatedBy   int64
	Description string
}

// PaymentReceived debits cash/bank and credits the account the policy chose.
func PaymentReceived(in PaymentInput, creditCode string) (journal.PostingInput, error) {
	if in.Amount <= 0 {
		return journal.PostingInput{}, ErrInvalidAmount
	}
	desc := in.Description
	if desc == "" {
		desc = "Payment received"
	}
	return journal.PostingInput{
		Type:          journal.TypePaymentReceived,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   desc,
		ReferenceType: "payment",
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
		Lines: []journal.Line{
			journal.NewDebitLine(in.Method.DebitCode(), in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
			journal.NewCreditLine(creditCode, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
		},
	}, nil
}

// CamPaymentReceived debits cash/bank and credits Accounts Receivable.
func CamPaymentReceived(in PaymentInput) (journal.PostingInput, error) {
	if in.Amount <= 0 {
		return journal.PostingInput{}, ErrInvalidAmount
	}
	desc := in.Description
	if desc == "" {
		desc = "CAM payment received"
	}
	return journal.PostingInput{
		Type:          journal.TypeCamPaymentReceived,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   desc,
		ReferenceType: "cam_payment",
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
		Lines: []journal.Line{
			journal.NewDebitLine(in.Method.DebitCode(), in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
			journal.NewCreditLine(accounts.CodeReceivable, in.Amount).Tagged(in.TenantID, in.PropertyID, in.Fiscal, desc),
		},
	}, nil
}

// GenericInput wraps a caller-supplied balanced line set.
type GenericInput struct {
	Date          time.Time
	Fiscal        fiscal.Period
	Description   string
	ReferenceType string
	ReferenceID   string
	CreatedBy     int64
	Lines         []journal.Line
}

// Generic passes arbitrary lines through; the poster performs the balance
// check. Used for ad hoc corrections.
func Generic(in GenericInput) journal.PostingInput {
	return journal.PostingInput{
		Type:          journal.TypeGeneric,
		Date:          in.Date,
		Fiscal:        in.Fiscal,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
		Lines:         in.Lines,
	}
}
