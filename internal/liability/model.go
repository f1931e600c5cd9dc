// Package liability holds the denormalized liability records mirrored from
// security deposit and manual payable flows. The collection feeds the
// liabilities dashboard; it is not part of the ledger's consistency
// guarantees.
package liability

import (
	"errors"
	"time"
)

// Kind tags the flow that produced a record.
type Kind string

const (
	KindSecurityDeposit Kind = "SECURITY_DEPOSIT"
	KindManual          Kind = "MANUAL"
)

// Status tracks settlement of a liability.
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusSettled Status = "SETTLED"
)

// Record is one liability owed by the property owner.
type Record struct {
	ID            int64
	TenantID      *int64
	PropertyID    *int64
	Kind          Kind
	Amount        int64
	Description   string
	ReferenceType string
	ReferenceID   string
	Status        Status
	CreatedAt     time.Time
	SettledAt     *time.Time
}

// CreateInput describes a liability to register.
type CreateInput struct {
	TenantID      *int64
	PropertyID    *int64
	Kind          Kind
	Amount        int64
	Description   string
	ReferenceType string
	ReferenceID   string
}

// Validate checks the input before persistence.
func (in CreateInput) Validate() error {
	if in.Amount <= 0 {
		return errors.New("liability: amount must be positive")
	}
	if in.Kind != KindSecurityDeposit && in.Kind != KindManual {
		return errors.New("liability: unknown kind")
	}
	return nil
}

// ListFilter narrows dashboard queries.
type ListFilter struct {
	TenantID   *int64
	PropertyID *int64
	Status     Status
}
