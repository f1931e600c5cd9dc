package journal

import (
	"fmt"
	"time"

	"github.com/gharbeti/gharbeti/internal/fiscal"
)

// TransactionType tags the business event that produced a posting.
type TransactionType string

const (
	TypeRentCharge         TransactionType = "RENT_CHARGE"
	TypeCamCharge          TransactionType = "CAM_CHARGE"
	TypeSecurityDeposit    TransactionType = "SECURITY_DEPOSIT"
	TypePaymentReceived    TransactionType = "PAYMENT_RECEIVED"
	TypeCamPaymentReceived TransactionType = "CAM_PAYMENT_RECEIVED"
	TypeGeneric            TransactionType = "GENERIC"
)

// ParseTransactionType checks an externally supplied type tag against the
// known set, so ad hoc postings cannot mint new tags.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TypeRentCharge, TypeCamCharge, TypeSecurityDeposit,
		TypePaymentReceived, TypeCamPaymentReceived, TypeGeneric:
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// TransactionStatus enumerates transaction lifecycle values. Current flows
// only ever produce POSTED.
type TransactionStatus string

const (
	StatusPosted TransactionStatus = "POSTED"
)

// Transaction is the header of one business event. It is created once,
// atomically with its entries, and immutable thereafter.
type Transaction struct {
	ID            int64
	Type          TransactionType
	Date          time.Time
	Fiscal        fiscal.Period
	Description   string
	ReferenceType string
	ReferenceID   string
	TotalAmount   int64
	Status        TransactionStatus
	CreatedBy     int64
	CreatedAt     time.Time
	Entries       []LedgerEntry
}

// LedgerEntry is one leg of a transaction. Entries are append-only: created
// in bulk with their siblings, never updated or deleted. Tenant and property
// are weak filter keys, not ownership.
type LedgerEntry struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	AccountCode   string
	Debit         int64
	Credit        int64
	Description   string
	TenantID      *int64
	PropertyID    *int64
	Fiscal        fiscal.Period
	Date          time.Time
	CreatedAt     time.Time
}
