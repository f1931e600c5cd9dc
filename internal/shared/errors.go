package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAccountNotFound indicates a line item referenced a code absent from the chart.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnbalanced indicates the debit and credit totals of a posting disagree.
	ErrUnbalanced = errors.New("unbalanced transaction")
	// ErrTooFewLines indicates a posting carried fewer than two line items.
	ErrTooFewLines = errors.New("posting requires at least two lines")
	// ErrInvalidLine indicates a line item had both or neither of debit/credit set.
	ErrInvalidLine = errors.New("line must carry exactly one of debit or credit")
	// ErrInvalidFilter indicates a malformed statement or summary filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrDuplicateReference indicates a posting reused an external reference.
	ErrDuplicateReference = errors.New("duplicate transaction reference")
)
